// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"time"

	"github.com/shelf-labs/bucketd/pkg/api"
	"github.com/shelf-labs/bucketd/pkg/logger"
	"github.com/shelf-labs/bucketd/pkg/storage"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as a function behind an HTTP gateway",
	Long: `Run bucketd as a managed function. The gateway forwards the raw request
and receives the structured response object back. Configuration comes from
the function environment: BUCKET_NAME (required), AWS_REGION (set by the
platform), LOG_LEVEL.`,
	Run: runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

func runLambda(cmd *cobra.Command, args []string) {
	bucket := os.Getenv("BUCKET_NAME")
	if bucket == "" {
		logger.Fatal().Msg("BUCKET_NAME environment variable not set")
	}

	backend, err := storage.NewS3Backend(cmd.Context(), storage.S3Config{
		Bucket:  bucket,
		Region:  os.Getenv("AWS_REGION"),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create S3 backend")
	}

	// The platform scrapes no metrics endpoint; skip registration.
	server := api.NewListServer(backend, nil)

	logger.Info().Str("bucket", bucket).Msg("starting lambda handler")
	lambda.Start(server.HandleAPIGateway)
}
