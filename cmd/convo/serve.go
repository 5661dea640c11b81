package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo/internal/adapters/file"
	"github.com/simbleau/convo/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a dialogue tree over HTTP",
	Long: `Starts the HTTP API for the given dialogue file: walk sessions under
/api/walks, the tree and its Mermaid graph under /api/tree, health under
/healthz, and Prometheus metrics under /metrics. With --watch the served
tree reloads whenever the file changes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		watch, _ := cmd.Flags().GetBool("watch")

		if err := serve(cmd.Context(), args[0], addr, watch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "address to listen on")
	serveCmd.Flags().BoolP("watch", "w", false, "reload the tree when the dialogue file changes")
}

func serve(parent context.Context, path, addr string, watch bool) error {
	logger := newLogger()

	src := file.NewSource(path)
	t, err := src.Load(parent)
	if err != nil {
		return err
	}

	manager, closeStore, err := newManager()
	if err != nil {
		return err
	}
	defer closeStore()

	api := httpapi.NewServer(t, manager, httpapi.WithLogger(logger))

	watchCtx, stopWatch := context.WithCancel(parent)
	defer stopWatch()
	if watch {
		go func() {
			if err := api.WatchSource(watchCtx, src); err != nil && watchCtx.Err() == nil {
				logger.Error("watch stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: api.Handler(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving dialogue tree", "addr", addr, "file", path, "watch", watch)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
	}
	return nil
}
