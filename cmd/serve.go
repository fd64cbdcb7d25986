package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"libgenui_server/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		// Select Gin mode based on APP_ENV
		if a.cfg.AppEnv == "production" {
			gin.SetMode(gin.ReleaseMode)
		} else {
			gin.SetMode(gin.DebugMode)
			klog.Info("Running in Gin Debug Mode")
		}

		router := api.NewRouter(api.NewAPIHandler(a.orchestrator, a.artifacts))
		server := &http.Server{
			Addr:    a.cfg.ServerAddress,
			Handler: router,
			// generation runs synchronously by default and can take minutes
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			klog.Infof("Starting API server on %s", a.cfg.ServerAddress)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		// --- Graceful Shutdown ---
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			klog.Infof("Received signal: %s. Shutting down server...", sig)
		case err, ok := <-serverErr:
			if ok {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			klog.Errorf("API server forced shutdown error: %v", err)
		} else {
			klog.Info("API server gracefully stopped.")
		}
		klog.Info("Waiting for running generations to finish...")
		return nil
	},
}
