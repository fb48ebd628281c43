// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/config"
	"github.com/netwisp/fwmon/cli/session"
	"github.com/netwisp/fwmon/cli/subcommands/history"
	"github.com/netwisp/fwmon/cli/subcommands/login"
	"github.com/netwisp/fwmon/cli/subcommands/operations"
	"github.com/netwisp/fwmon/cli/subcommands/watch"
	"github.com/netwisp/fwmon/client"
)

var rootCmd = &cobra.Command{
	Use:   "fwmon",
	Short: "A command line interface for firmware upgrade monitoring",
	Long: `fwmon follows firmware upgrade operations published by an upgrader
server, renders their progress, and can cancel operations that have not
passed the point of no return.

Configuration is stored in $HOME/.config/fwmon.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["standalone"] == "true" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		contextName, err := cmd.Flags().GetString("context")
		if err != nil {
			return fmt.Errorf("failed to get context flag: %w", err)
		}

		appctx, err := cfg.GetContext(contextName)
		if err != nil {
			return fmt.Errorf("failed to get current context: %w", err)
		}

		sess := &session.Session{
			Context: appctx,
			Api:     client.NewApi(appctx.URL, appctx.Token, appctx.CSRFToken),
		}

		ctx := context.WithValue(cmd.Context(), session.ContextKey, sess)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("context", "c", "", "Specify the context to use from the configuration file")
	rootCmd.AddCommand(login.LoginCmd)
	rootCmd.AddCommand(watch.WatchCmd)
	rootCmd.AddCommand(operations.OperationsCmd)
	rootCmd.AddCommand(history.HistoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
