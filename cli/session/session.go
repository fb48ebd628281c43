// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package session

import (
	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/config"
	"github.com/netwisp/fwmon/client"
)

// Session carries the resolved config context and an API client through
// the cobra command context.
type Session struct {
	Context *config.Context
	Api     *client.Api
}

type ctxKey int

const ContextKey ctxKey = 0

// FromCommand extracts the session placed into the command context by the
// root command's PersistentPreRunE.
func FromCommand(cmd *cobra.Command) *Session {
	return cmd.Context().Value(ContextKey).(*Session)
}
