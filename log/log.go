// Copyright (c) 2001 Mark Fullmer and The Ohio State University.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package log provides a small leveled-logging facade so that the rest of
// this module never imports a concrete logging library directly.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Level is a logging severity threshold.
type Level int

// Supported levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the minimal interface other packages log through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// Helper adds convenience methods (Debugw, Infow, ...) on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper. A nil logger yields a Helper whose
// methods are no-ops.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, msg string, keyvals ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	args := append([]interface{}{"msg", msg}, keyvals...)
	_ = h.logger.Log(level, args...)
}

// Debugw logs at debug level with structured key/value pairs.
func (h *Helper) Debugw(msg string, keyvals ...interface{}) { h.log(LevelDebug, msg, keyvals...) }

// Infow logs at info level with structured key/value pairs.
func (h *Helper) Infow(msg string, keyvals ...interface{}) { h.log(LevelInfo, msg, keyvals...) }

// Warnw logs at warn level with structured key/value pairs.
func (h *Helper) Warnw(msg string, keyvals ...interface{}) { h.log(LevelWarn, msg, keyvals...) }

// Errorw logs at error level with structured key/value pairs.
func (h *Helper) Errorw(msg string, keyvals ...interface{}) { h.log(LevelError, msg, keyvals...) }

// stdLogger adapts a *logrus.Logger to the Logger interface.
type stdLogger struct {
	lr *logrus.Logger
}

// NewStdLogger returns a Logger backed by logrus, writing to w.
func NewStdLogger(w *os.File) Logger {
	lr := logrus.New()
	lr.SetOutput(w)
	lr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &stdLogger{lr: lr}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	entry := s.lr.WithFields(fieldsFromKeyvals(keyvals))
	switch level {
	case LevelDebug:
		entry.Debug()
	case LevelInfo:
		entry.Info()
	case LevelWarn:
		entry.Warn()
	default:
		entry.Error()
	}
	return nil
}

func fieldsFromKeyvals(keyvals []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	return fields
}

// filter wraps a Logger and drops records below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a record must meet to pass through.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.min = level }
}

// NewFilter wraps next with level filtering according to opts.
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, min: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}
