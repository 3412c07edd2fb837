//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of LakeETL.
//
// LakeETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LakeETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LakeETL. If not, see https://www.gnu.org/licenses/.

// Command lakeetl builds the analytics star schema from the raw song
// metadata and activity log files, writing partitioned Parquet tables
// to the configured output location.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaronlmathis/lakeetl/lake"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "lakeetl",
		Short:        "Build the song play star schema as partitioned Parquet tables",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := lake.LoadConfig(configFile)
			if err != nil {
				return err
			}

			session, err := lake.NewSession(ctx, cfg)
			if err != nil {
				return err
			}
			return session.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "dl.cfg", "path to the dotenv configuration file")
	return cmd
}
