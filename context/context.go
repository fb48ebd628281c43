// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package context

import (
	"context"
	"log/slog"
)

type (
	Context = context.Context
	ctxKey  int
)

var (
	Background  = context.Background
	WithCancel  = context.WithCancel
	WithTimeout = context.WithTimeout
)

const (
	ctxKeyLogger ctxKey = iota
)

func CtxGetLog(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok {
		return log
	}
	return slog.Default()
}

func CtxWithLog(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, log)
}
