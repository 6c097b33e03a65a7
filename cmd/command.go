// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/shelf-labs/bucketd/pkg/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bucketd",
	Short: "Bucketd - HTTP bucket-listing service",
	Long: `Bucketd exposes a single HTTP endpoint that lists the contents of one
object-storage bucket, optionally filtered by key prefix and capped at a
maximum number of results. It runs either as a standalone HTTP server or as
a function behind an HTTP gateway.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
