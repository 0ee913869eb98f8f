// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Command ftcat is an FT3 stream inspector: it opens a stream file, decodes
// its records, and prints them as JSON.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	netflow "github.com/flow-tools/ft3"
	"github.com/flow-tools/ft3/stream"
	"github.com/spf13/cobra"
)

var (
	header bool
	limit  int
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		log.Println("JSON parse error: ", err)
		return string(buf)
	}
	return pretty.String()
}

func catFile(filename string, cmd *cobra.Command) {
	f, err := os.Open(filename)
	if err != nil {
		log.Printf("Error while opening file: %s, reason: %s", filename, err)
		return
	}
	defer f.Close()

	r, err := stream.Open(f, nil)
	if err != nil {
		log.Printf("Error while opening stream: %s, reason: %s", filename, err)
		return
	}
	defer r.Close()

	wantHeader, _ := cmd.Flags().GetBool("header")
	if wantHeader {
		hdr, _ := json.Marshal(r.Header)
		fmt.Println(prettyPrint(hdr))
	}

	maxRecords, _ := cmd.Flags().GetInt("limit")

	count := 0
	for {
		if maxRecords > 0 && count >= maxRecords {
			break
		}
		raw, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Error while reading record in %s: %s", filename, err)
			return
		}
		rec, err := netflow.DecodeRecord(raw, r.Header.Version, r.Header.AggMethod)
		if err != nil {
			log.Printf("Error while decoding record in %s: %s", filename, err)
			continue
		}
		out, _ := json.Marshal(rec)
		fmt.Println(prettyPrint(out))
		count++
	}
}

func cat(cmd *cobra.Command, args []string) {
	for _, filename := range args {
		catFile(filename, cmd)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ftcat",
		Short: "An FT3 NetFlow stream inspector",
		Long:  "Dumps the header and records of one or more FT3 stream files as JSON",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ftcat version 0.0.1")
		},
	}

	var catCmd = &cobra.Command{
		Use:   "cat",
		Short: "Print a stream file's header and records as JSON",
		Args:  cobra.MinimumNArgs(1),
		Run:   cat,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(catCmd)

	catCmd.Flags().BoolVarP(&header, "header", "", true, "print the stream header")
	catCmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after printing N records (0 means no limit)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
