/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/labsight/cmd"
	"github.com/humaidq/labsight/logging"
)

func main() {
	app := &cli.Command{
		Name:  "labsight",
		Usage: "Labsight - editable lab report preview",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
			cmd.CmdPreview,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.Logger(logging.SourceApp).Fatal("Command failed", "error", err)
	}
}
