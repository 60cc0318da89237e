/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// NameToLevel converts a level name to a zapcore.Level. If the level name is
// unknown, zapcore.InfoLevel is returned.
func NameToLevel(level string) zapcore.Level {
	l, err := nameToLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func nameToLevel(level string) (zapcore.Level, error) {
	switch level {
	case "PANIC", "panic":
		return zapcore.PanicLevel, nil
	case "FATAL", "fatal":
		return zapcore.FatalLevel, nil
	case "ERROR", "error":
		return zapcore.ErrorLevel, nil
	case "WARNING", "warning", "WARN", "warn":
		return zapcore.WarnLevel, nil
	case "INFO", "info":
		return zapcore.InfoLevel, nil
	case "DEBUG", "debug":
		return zapcore.DebugLevel, nil
	default:
		return zapcore.InfoLevel, errors.Errorf("invalid log level: %s", level)
	}
}

// IsValidLevel returns true if the provided level name is a valid log level.
func IsValidLevel(level string) bool {
	_, err := nameToLevel(level)
	return err == nil
}
