/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hyperledger-labs/meshbft/common/flogging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logging, err := flogging.New(flogging.Config{})
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, logging.DefaultLevel())

	_, err = flogging.New(flogging.Config{
		LogSpec: "::=borken=::",
	})
	require.EqualError(t, err, "invalid logging specification '::=borken=::': bad segment '=borken='")
}

func TestNewWithEnvironment(t *testing.T) {
	t.Setenv("MESHBFT_LOGGING_SPEC", "fatal")
	logging, err := flogging.New(flogging.Config{})
	require.NoError(t, err)
	require.Equal(t, zapcore.FatalLevel, logging.DefaultLevel())

	t.Setenv("MESHBFT_LOGGING_SPEC", "")
	logging, err = flogging.New(flogging.Config{})
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, logging.DefaultLevel())
}

func TestLoggingSetWriter(t *testing.T) {
	buf := &bytes.Buffer{}

	logging, err := flogging.New(flogging.Config{})
	require.NoError(t, err)

	old := logging.SetWriter(buf)
	logging.SetWriter(old)
	original := logging.SetWriter(buf)

	require.Exactly(t, old, original)
	_, err = logging.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "hello", buf.String())
}

func TestLoggingSetFormat(t *testing.T) {
	tests := []struct {
		format   string
		encoding flogging.Encoding
		err      string
	}{
		{format: "", encoding: flogging.LOGFMT},
		{format: "logfmt", encoding: flogging.LOGFMT},
		{format: "json", encoding: flogging.JSON},
		{format: "console", encoding: flogging.CONSOLE},
		{format: "warhol", err: "logging format not supported: warhol"},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			logging, err := flogging.New(flogging.Config{})
			require.NoError(t, err)

			err = logging.SetFormat(tc.format)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.encoding, logging.Encoding())
		})
	}
}

func TestLoggingWriteLogfmt(t *testing.T) {
	buf := &bytes.Buffer{}
	logging, err := flogging.New(flogging.Config{
		Format:  "logfmt",
		LogSpec: "debug",
		Writer:  buf,
	})
	require.NoError(t, err)

	logger := logging.Logger("test.logfmt")
	logger.Debugf("hello, %s", "world")

	require.Contains(t, buf.String(), `msg="hello, world"`)
	require.Contains(t, buf.String(), "name=test.logfmt")
}

func TestLoggingWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logging, err := flogging.New(flogging.Config{
		Format:  "json",
		LogSpec: "debug",
		Writer:  buf,
	})
	require.NoError(t, err)

	logger := logging.Logger("test.json")
	logger.Infof("hello, %s", "world")

	require.Contains(t, buf.String(), `"msg":"hello, world"`)
	require.Contains(t, buf.String(), `"name":"test.json"`)
}

func TestLoggingSuppressedLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logging, err := flogging.New(flogging.Config{
		LogSpec: "warn",
		Writer:  buf,
	})
	require.NoError(t, err)

	logger := logging.Logger("test.suppressed")
	logger.Infof("this should not be written")
	require.Empty(t, buf.String())

	logger.Warnf("this should be written")
	require.Contains(t, buf.String(), `msg="this should be written"`)
}

func TestLoggingZapLoggerNameValidation(t *testing.T) {
	logging, err := flogging.New(flogging.Config{})
	require.NoError(t, err)

	require.Panics(t, func() { logging.ZapLogger("test module") })
	require.NotPanics(t, func() { logging.ZapLogger("test.module") })
}

type testObserver struct {
	checked int
	written int
}

func (o *testObserver) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) { o.checked++ }
func (o *testObserver) WriteEntry(e zapcore.Entry, f []zapcore.Field)  { o.written++ }

func TestLoggingSetObserver(t *testing.T) {
	observer := &testObserver{}

	logging, err := flogging.New(flogging.Config{
		LogSpec: "debug",
		Writer:  &bytes.Buffer{},
	})
	require.NoError(t, err)

	old := logging.SetObserver(observer)
	require.Nil(t, old)

	logger := logging.Logger("test.observer")
	logger.Debug("message")

	require.Equal(t, 1, observer.checked)
	require.Equal(t, 1, observer.written)

	current := logging.SetObserver(nil)
	require.Exactly(t, observer, current)
}

type brokenWriter struct{}

func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("pipe broke") }
func (b *brokenWriter) Sync() error               { return errors.New("sync failed") }

func TestLoggingSyncDelegates(t *testing.T) {
	logging, err := flogging.New(flogging.Config{})
	require.NoError(t, err)

	logging.SetWriter(&brokenWriter{})
	require.EqualError(t, logging.Sync(), "sync failed")
}
