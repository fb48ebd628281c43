// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
)

type CommonArgs struct {
	LogLevel string `help:"Log level: debug, info, warning, error"`
}

type args struct {
	CommonArgs
	Serve *ServeCmd `arg:"subcommand:serve" help:"Run the simulated upgrader backend"`
}

func main() {
	a := args{}
	p := arg.MustParse(&a)

	switch {
	case a.Serve != nil:
		if err := a.Serve.Run(a.CommonArgs); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
	default:
		p.Fail("missing required subcommand")
	}
}
