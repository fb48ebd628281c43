// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package operations

import (
	"github.com/spf13/cobra"
)

var OperationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "Inspect and manage upgrade operations",
}
