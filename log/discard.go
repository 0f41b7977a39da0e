// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
)

// discardHandler drops every record. It is the default until the host
// program installs a real handler.
type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }

func (d discardHandler) WithGroup(string) slog.Handler { return d }

func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler { return d }
