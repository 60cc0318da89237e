/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger creates a zap logger around a new zap.Core. The core will use
// the provided encoder and sinks and a level enabler that is associated with
// the provided logger name. The logger that is returned will be named the
// same as the logger.
func NewZapLogger(core zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(
		core,
		append([]zap.Option{
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		}, options...)...,
	)
}

// NewLogger creates a Logger that delegates to the zap.SugaredLogger.
func NewLogger(l *zap.Logger, options ...zap.Option) *Logger {
	return &Logger{
		s: l.WithOptions(append(options, zap.AddCallerSkip(1))...).Sugar(),
	}
}

// A Logger is an adapter around a zap.SugaredLogger.
//
// The most significant difference between the Logger and the
// zap.SugaredLogger is that methods without a formatting suffix (f or w)
// build the log entry message with fmt.Sprintln instead of fmt.Sprint.
// Without this change, arguments are not separated by spaces.
type Logger struct{ s *zap.SugaredLogger }

func (l *Logger) DPanic(args ...interface{})                    { l.s.DPanicf(formatArgs(args)) }
func (l *Logger) DPanicf(template string, args ...interface{})  { l.s.DPanicf(template, args...) }
func (l *Logger) DPanicw(msg string, kvPairs ...interface{})    { l.s.DPanicw(msg, kvPairs...) }
func (l *Logger) Debug(args ...interface{})                     { l.s.Debugf(formatArgs(args)) }
func (l *Logger) Debugf(template string, args ...interface{})   { l.s.Debugf(template, args...) }
func (l *Logger) Debugw(msg string, kvPairs ...interface{})     { l.s.Debugw(msg, kvPairs...) }
func (l *Logger) Error(args ...interface{})                     { l.s.Errorf(formatArgs(args)) }
func (l *Logger) Errorf(template string, args ...interface{})   { l.s.Errorf(template, args...) }
func (l *Logger) Errorw(msg string, kvPairs ...interface{})     { l.s.Errorw(msg, kvPairs...) }
func (l *Logger) Fatal(args ...interface{})                     { l.s.Fatalf(formatArgs(args)) }
func (l *Logger) Fatalf(template string, args ...interface{})   { l.s.Fatalf(template, args...) }
func (l *Logger) Fatalw(msg string, kvPairs ...interface{})     { l.s.Fatalw(msg, kvPairs...) }
func (l *Logger) Info(args ...interface{})                      { l.s.Infof(formatArgs(args)) }
func (l *Logger) Infof(template string, args ...interface{})    { l.s.Infof(template, args...) }
func (l *Logger) Infow(msg string, kvPairs ...interface{})      { l.s.Infow(msg, kvPairs...) }
func (l *Logger) Panic(args ...interface{})                     { l.s.Panicf(formatArgs(args)) }
func (l *Logger) Panicf(template string, args ...interface{})   { l.s.Panicf(template, args...) }
func (l *Logger) Panicw(msg string, kvPairs ...interface{})     { l.s.Panicw(msg, kvPairs...) }
func (l *Logger) Warn(args ...interface{})                      { l.s.Warnf(formatArgs(args)) }
func (l *Logger) Warnf(template string, args ...interface{})    { l.s.Warnf(template, args...) }
func (l *Logger) Warnw(msg string, kvPairs ...interface{})      { l.s.Warnw(msg, kvPairs...) }
func (l *Logger) Warning(args ...interface{})                   { l.s.Warnf(formatArgs(args)) }
func (l *Logger) Warningf(template string, args ...interface{}) { l.s.Warnf(template, args...) }

func (l *Logger) Named(name string) *Logger { return &Logger{s: l.s.Named(name)} }
func (l *Logger) Sync() error               { return l.s.Sync() }
func (l *Logger) Zap() *zap.Logger          { return l.s.Desugar() }

func (l *Logger) IsEnabledFor(level zapcore.Level) bool {
	return l.s.Desugar().Core().Enabled(level)
}

func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{s: l.s.With(args...)}
}

func (l *Logger) WithOptions(opts ...zap.Option) *Logger {
	zl := l.s.Desugar().WithOptions(opts...)
	return &Logger{s: zl.Sugar()}
}

func formatArgs(args []interface{}) string { return strings.TrimSuffix(fmt.Sprintln(args...), "\n") }
