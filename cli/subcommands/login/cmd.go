// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package login

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netwisp/fwmon/cli/config"
)

var LoginCmd = &cobra.Command{
	Use:   "login <context-name> <server-url>",
	Short: "Configure authentication for an upgrader server",
	Long: `Login to an upgrader server by configuring a context with an API token.

Tokens are issued by the server's admin interface. The configuration is
saved to ~/.config/fwmon.yaml.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"standalone": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		contextName := args[0]
		serverURL := strings.TrimRight(args[1], "/")

		token, _ := cmd.Flags().GetString("token")
		csrfToken, _ := cmd.Flags().GetString("csrf-token")
		setDefault, _ := cmd.Flags().GetBool("set-default")

		if token == "" {
			var err error
			token, err = promptToken()
			if err != nil {
				return err
			}
		}

		return saveToken(contextName, serverURL, token, csrfToken, setDefault)
	},
}

func init() {
	LoginCmd.Flags().String("token", "", "API token for authentication (prompted for if not given)")
	LoginCmd.Flags().String("csrf-token", "", "CSRF token to send with cancel requests (optional)")
	LoginCmd.Flags().Bool("set-default", true, "Set this context as the default")
}

func promptToken() (string, error) {
	fmt.Print("API token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("no token given")
	}
	return token, nil
}

func saveToken(contextName, serverURL, token, csrfToken string, setDefault bool) error {
	// Load existing config or create new one
	cfg, err := config.LoadConfig()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = &config.Config{
				Contexts: make(map[string]config.Context),
			}
		} else {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]config.Context)
	}
	cfg.Contexts[contextName] = config.Context{
		URL:       serverURL,
		Token:     token,
		CSRFToken: csrfToken,
	}

	if setDefault {
		cfg.ActiveContext = contextName
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Successfully configured context '%s'\n", contextName)
	fmt.Printf("  Server URL: %s\n", serverURL)
	if setDefault {
		fmt.Printf("  Set as default context\n")
	}

	return nil
}
