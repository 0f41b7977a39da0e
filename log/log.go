// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the structured logger shared by all components.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the logging surface handed to components.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(discardHandler{}))
}

// WithContext returns a logger carrying the given context pair.
func WithContext(key string, value any) Logger {
	return &logger{inner: root.Load().With(key, value)}
}

// SetRootHandler replaces the process-wide root handler.
func SetRootHandler(h slog.Handler) {
	root.Store(slog.New(h))
}

// NewTextHandler builds a human-readable handler at the given level.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// NewJSONHandler builds a machine-readable handler at the given level.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Stderr is the default log sink.
var Stderr io.Writer = os.Stderr
