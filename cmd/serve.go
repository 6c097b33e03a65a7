// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shelf-labs/bucketd/pkg/api"
	"github.com/shelf-labs/bucketd/pkg/debug"
	"github.com/shelf-labs/bucketd/pkg/env"
	"github.com/shelf-labs/bucketd/pkg/listing"
	"github.com/shelf-labs/bucketd/pkg/logger"
	"github.com/shelf-labs/bucketd/pkg/storage"
	"github.com/shelf-labs/bucketd/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ServeOpts struct {
	IP        string
	HTTPPort  int
	DebugPort int
	LogLevel  string

	Backend         string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	RequestTimeout  time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the listing HTTP server",
	Long: `Start a bucketd HTTP server that handles:
- GET /list-bucket with optional prefix and max_keys query parameters
- a debug port with /metrics, /health, /ready and pprof`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("ip", "0.0.0.0", "IP address to bind to")
	f.Int("http_port", 8080, "HTTP port for the listing API")
	f.Int("debug_port", 8081, "Debug HTTP port (metrics, health, pprof)")
	f.String("log_level", "info", "Log level (debug, info, warn, error, fatal)")

	f.String("backend", "s3", "Storage backend (s3, memory)")
	f.String("bucket", "", "Bucket to list (env: BUCKET_NAME)")
	f.String("region", "", "Bucket region (falls back to the SDK default chain)")
	f.String("endpoint", "", "Custom S3 endpoint for S3-compatible stores")
	f.String("access_key_id", "", "Static access key (omit to use the SDK default chain)")
	f.String("secret_access_key", "", "Static secret key (use env var SECRET_ACCESS_KEY)")
	f.Bool("path_style", false, "Use path-style addressing (needed by most S3-compatible stores)")
	f.Duration("request_timeout", 30*time.Second, "Per-call timeout against the storage backend")

	viper.BindPFlags(f)
}

func runServe(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("bucketd", false)
	opts := loadServeOpts(cmd)

	if level, err := zerolog.ParseLevel(opts.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	debug.SetNotReady()

	backend := buildBackend(cmd.Context(), opts)
	server := api.NewListServer(backend, debug.Registry())

	httpMux := http.NewServeMux()
	server.Register(httpMux)
	httpServer := startHTTPServer(httpMux, opts.IP, opts.HTTPPort)
	debugServer := startHTTPServer(debug.GetMux(), opts.IP, opts.DebugPort)

	debug.SetReady()
	waitForShutdown()
	debug.SetNotReady()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
	debugServer.Shutdown(shutdownCtx)
}

func loadServeOpts(cmd *cobra.Command) ServeOpts {
	f := NewFlagLoader(cmd)

	bucket := f.String("bucket")
	if bucket == "" {
		bucket = os.Getenv("BUCKET_NAME")
	}

	return ServeOpts{
		IP:              f.String("ip"),
		HTTPPort:        f.Int("http_port"),
		DebugPort:       f.Int("debug_port"),
		LogLevel:        f.String("log_level"),
		Backend:         f.String("backend"),
		Bucket:          bucket,
		Region:          f.String("region"),
		Endpoint:        f.String("endpoint"),
		AccessKeyID:     f.String("access_key_id"),
		SecretAccessKey: f.String("secret_access_key"),
		PathStyle:       f.Bool("path_style"),
		RequestTimeout:  f.Duration("request_timeout"),
	}
}

// buildBackend constructs the storage collaborator. Missing bucket
// configuration is fatal at boot rather than a 500 on every request.
func buildBackend(ctx context.Context, opts ServeOpts) storage.Backend {
	switch opts.Backend {
	case "memory":
		if !env.IsLocal() {
			logger.Warn().Msg("memory backend selected outside local env")
		}
		return storage.NewMemoryBackend(listing.DefaultMaxKeys)
	case "s3":
		if opts.Bucket == "" {
			logger.Fatal().Msg("bucket not configured (set --bucket or BUCKET_NAME)")
		}
		backend, err := storage.NewS3Backend(ctx, storage.S3Config{
			Bucket:          opts.Bucket,
			Region:          opts.Region,
			Endpoint:        opts.Endpoint,
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			PathStyle:       opts.PathStyle,
			Timeout:         opts.RequestTimeout,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create S3 backend")
		}
		logger.Info().
			Str("bucket", opts.Bucket).
			Str("endpoint", opts.Endpoint).
			Msg("S3 backend ready")
		return backend
	default:
		logger.Fatal().Str("backend", opts.Backend).Msg("unknown backend")
		return nil
	}
}

func startHTTPServer(handler http.Handler, ip string, port int) *http.Server {
	addr := utils.JoinHostPort(ip, port)
	httpServer := &http.Server{Addr: addr, Handler: handler}
	go func() {
		logger.Info().Str("http_addr", addr).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start HTTP server")
		}
	}()
	return httpServer
}

func waitForShutdown() {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan
}
