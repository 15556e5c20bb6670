package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecolens/binscan/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the scan interface",
		Long: `Starts the Binscan web interface on the specified port.

The interface lets you upload or capture an item photo, watch the scan
progress, and download the classification report. When a provider is
configured the server also hosts the /api/scan classification endpoint, so
SCAN_API_URL may point back at this server.`,
		Example: `  # Start server on default port 8090
  binscan serve

  # Start server on custom port
  binscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := handlers.New()

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/session", handler.HandleSession)
			mux.HandleFunc("/api/session/reset", handler.HandleSessionReset)
			mux.HandleFunc("/api/session/error", handler.HandleSessionError)
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/upload/open", handler.HandleUploadOpen)
			mux.HandleFunc("/api/camera/open", handler.HandleCameraOpen)
			mux.HandleFunc("/api/camera/close", handler.HandleCameraClose)
			mux.HandleFunc("/api/camera/capture", handler.HandleCameraCapture)
			mux.HandleFunc("/api/report", handler.HandleReport)
			mux.HandleFunc("/api/scan", handler.HandleScan)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Binscan interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8090", "Port to listen on")

	return cmd
}
