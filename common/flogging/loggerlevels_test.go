/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging_test

import (
	"fmt"
	"testing"

	"github.com/hyperledger-labs/meshbft/common/flogging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerLevelsActivateSpec(t *testing.T) {
	tests := []struct {
		spec                 string
		expectedLevels       map[string]zapcore.Level
		expectedDefaultLevel zapcore.Level
	}{
		{
			spec:                 "DEBUG",
			expectedLevels:       map[string]zapcore.Level{},
			expectedDefaultLevel: zapcore.DebugLevel,
		},
		{
			spec:                 "INFO",
			expectedLevels:       map[string]zapcore.Level{},
			expectedDefaultLevel: zapcore.InfoLevel,
		},
		{
			spec: "logger=info:DEBUG",
			expectedLevels: map[string]zapcore.Level{
				"logger":     zapcore.InfoLevel,
				"logger.a":   zapcore.InfoLevel,
				"logger.b":   zapcore.InfoLevel,
				"logger.a.b": zapcore.InfoLevel,
			},
			expectedDefaultLevel: zapcore.DebugLevel,
		},
		{
			spec: "logger=info:logger.a=warn:DEBUG",
			expectedLevels: map[string]zapcore.Level{
				"logger":     zapcore.InfoLevel,
				"logger.a":   zapcore.WarnLevel,
				"logger.b":   zapcore.InfoLevel,
				"logger.a.b": zapcore.WarnLevel,
			},
			expectedDefaultLevel: zapcore.DebugLevel,
		},
		{
			spec: "logger.=info:DEBUG",
			expectedLevels: map[string]zapcore.Level{
				"logger":     zapcore.InfoLevel,
				"logger.a":   zapcore.DebugLevel,
				"logger.b":   zapcore.DebugLevel,
				"logger.a.b": zapcore.DebugLevel,
			},
			expectedDefaultLevel: zapcore.DebugLevel,
		},
		{
			spec: "a,b=warn:c,d=fatal:error",
			expectedLevels: map[string]zapcore.Level{
				"a": zapcore.WarnLevel,
				"b": zapcore.WarnLevel,
				"c": zapcore.FatalLevel,
				"d": zapcore.FatalLevel,
			},
			expectedDefaultLevel: zapcore.ErrorLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			ll := &flogging.LoggerLevels{}
			err := ll.ActivateSpec(tc.spec)
			require.NoError(t, err)
			require.Equal(t, tc.expectedDefaultLevel, ll.DefaultLevel())
			for name, lvl := range tc.expectedLevels {
				require.Equal(t, lvl, ll.Level(name))
			}
		})
	}
}

func TestLoggerLevelsActivateSpecErrors(t *testing.T) {
	tests := []struct {
		spec string
		err  error
	}{
		{spec: "=INFO:DEBUG", err: fmt.Errorf("invalid logging specification '=INFO:DEBUG': no logger specified in segment '=INFO'")},
		{spec: "=INFO=:DEBUG", err: fmt.Errorf("invalid logging specification '=INFO=:DEBUG': bad segment '=INFO='")},
		{spec: "bogus", err: fmt.Errorf("invalid logging specification 'bogus': bad segment 'bogus'")},
		{spec: "a.b=warn:info:bogus", err: fmt.Errorf("invalid logging specification 'a.b=warn:info:bogus': bad segment 'bogus'")},
		{spec: "a#b=warn", err: nil},
		{spec: "a^b=warn", err: fmt.Errorf("invalid logging specification 'a^b=warn': bad logger name 'a^b'")},
	}

	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			ll := &flogging.LoggerLevels{}
			err := ll.ActivateSpec("fatal")
			require.NoError(t, err)

			err = ll.ActivateSpec(tc.spec)
			if tc.err == nil {
				require.NoError(t, err)
				return
			}

			require.EqualError(t, err, tc.err.Error())
			// a failed activation must not disturb the active spec
			require.Equal(t, zapcore.FatalLevel, ll.DefaultLevel())
		})
	}
}

func TestLoggerLevelsSpec(t *testing.T) {
	tests := []struct {
		activateSpec string
		expectedSpec string
	}{
		{activateSpec: "info", expectedSpec: "info"},
		{activateSpec: "debug", expectedSpec: "debug"},
		{activateSpec: "a=info:warn", expectedSpec: "a=info:warn"},
		{activateSpec: "b=error:a=info:warn", expectedSpec: "a=info:b=error:warn"},
	}

	for _, tc := range tests {
		t.Run(tc.activateSpec, func(t *testing.T) {
			ll := &flogging.LoggerLevels{}
			err := ll.ActivateSpec(tc.activateSpec)
			require.NoError(t, err)
			require.Equal(t, tc.expectedSpec, ll.Spec())
		})
	}
}

func TestLoggerLevelsEnabled(t *testing.T) {
	ll := &flogging.LoggerLevels{}
	err := ll.ActivateSpec("chatty=debug:warn")
	require.NoError(t, err)

	// the minimum enabled level across all loggers gates the fast path
	require.True(t, ll.Enabled(zapcore.DebugLevel))
	require.True(t, ll.Enabled(zapcore.WarnLevel))

	err = ll.ActivateSpec("warn")
	require.NoError(t, err)
	require.False(t, ll.Enabled(zapcore.DebugLevel))
	require.True(t, ll.Enabled(zapcore.ErrorLevel))
}
