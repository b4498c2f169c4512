// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package logger carries a logrus.Entry through a context.Context so every
// goroutine in a run (tap capture, target capture, state writer) can log with
// the same run-scoped fields without passing a logger argument everywhere.
package logger

import (
	"context"

	easy "github.com/t-tomalak/logrus-easy-formatter"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// L is an alias for the standard logger.
var L = logrus.NewEntry(logrus.StandardLogger())

// WithContext returns a new context carrying the provided logger.
func WithContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// FromContext retrieves the current logger from the context, or the default
// logger if none is set.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := ctx.Value(loggerKey{})
	if entry == nil {
		return L
	}
	return entry.(*logrus.Entry)
}

// Init configures the standard logger's level and formatter.
func Init(debug, trace bool, format string) {
	switch {
	case trace:
		logrus.SetLevel(logrus.TraceLevel)
	case debug:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}

	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LogFormat:       "[%lvl%] %time% %msg%\n",
	})
}
