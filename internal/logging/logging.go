// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap loggers used by patchgate.
//
// Loggers are injected, never global. The CLI builds one with [New]; tests
// use [Test] or [TestObserved] so output lands in the test log.
//
// Levels:
//   - Error: the run failed (checkpatch findings, unreadable note store).
//   - Warn: something in the user's note was skipped.
//   - Info: the decision taken for the commit.
//   - Debug: lookups and the exact checkpatch command line.
package logging

import (
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Config selects the log level.
type Config struct {
	Verbose bool
}

// New returns a console logger writing to w. Review runners capture stderr
// as the job log, so output is plain text without timestamps.
func New(w io.Writer, cfg Config) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core).Named("patchgate").Sugar()
}

// Test returns a logger writing to tb's log.
func Test(tb testing.TB) *zap.SugaredLogger {
	tb.Helper()
	return zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Sugar()
}

// TestObserved returns a test logger and the entries it records at lvl or above.
func TestObserved(tb testing.TB, lvl zapcore.Level) (*zap.SugaredLogger, *observer.ObservedLogs) {
	tb.Helper()
	oCore, logs := observer.New(lvl)
	observe := zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, oCore)
	})
	return zaptest.NewLogger(tb, zaptest.WrapOptions(observe)).Sugar(), logs
}
