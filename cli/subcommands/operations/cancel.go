// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package operations

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netwisp/fwmon/cli/session"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <operation-id>",
	Short: "Cancel an in-progress upgrade operation",
	Long: `Ask the server to cancel an upgrade operation. The server rejects the
request once the device has started flashing the image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := session.FromCommand(cmd)
		if err := sess.Api.Cancel(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Cancel requested for operation %s\n", args[0])
		return nil
	},
}

func init() {
	OperationsCmd.AddCommand(cancelCmd)
}
