package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"notes-api/config"
	"notes-api/db"
	"notes-api/logging"
)

type cliOptions struct {
	envFile    string
	port       string
	storageURI string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "notes-api",
		Short: "HTTP service for creating, reading, updating and deleting notes",
		Long: `notes-api serves a JSON API over a single collection of notes.

Configuration is read from the environment (and a .env file):
` + config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&opts.storageURI, "mongodb-uri", "", "storage connection string (overrides MONGODB_URI)")
	root.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP listen port (overrides PORT)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Connect to storage and serve the notes API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check that the storage backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd.Context(), cmd, opts)
		},
	})
	return root
}

func loadConfig(opts *cliOptions) (config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if opts.storageURI != "" {
		cfg.StorageURI = opts.storageURI
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	return cfg, nil
}

func connectStore(ctx context.Context, cfg config.Config) (db.NoteStore, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	return db.Connect(ctx, cfg.StorageURI)
}

func runServe(ctx context.Context, opts *cliOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := logging.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	backend := db.Backend(cfg.StorageURI)
	store, err := connectStore(ctx, cfg)
	if err != nil {
		logger.Error("Error connecting to storage", "backend", backend, "error", err)
		return fmt.Errorf("connect storage: %w", err)
	}
	logger.Info("Connected to storage", "backend", backend)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(store, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server is running", "url", "http://localhost"+cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			store.Close(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("close storage", "error", err)
	}
	return nil
}

func runPing(ctx context.Context, cmd *cobra.Command, opts *cliOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logging.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %s reachable\n", db.Backend(cfg.StorageURI))
	return nil
}
