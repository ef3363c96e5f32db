package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gdocs-mcp/internal/google"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/logging"
	"github.com/teemow/gdocs-mcp/internal/server"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		googleClientID     string
		googleClientSecret string
		metricsEnabled     bool
		metricsAddr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing read-only
Google Docs and Sheets tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - http: JSON-RPC over HTTP on POST /rpc

OAuth Configuration:
  Client credentials are resolved in order from --google-client-id and
  --google-client-secret flags, a client_secret.json or credentials.json
  file in the working directory, or the GOOGLE_CLIENT_ID and
  GOOGLE_CLIENT_SECRET environment variables.

  Run 'gdocs-mcp auth' once to authorize access to your Google account;
  serve picks up the stored token on startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runServe(transport, debugMode, httpAddr, googleClientID, googleClientSecret, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for http transport). GDOCS_MCP_PORT or PORT env vars apply when left at the default.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var or a client secret file.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var or a client secret file.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (http transport only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, googleClientID, googleClientSecret string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// The protocol owns stdout on the stdio transport; logs always go
	// to stderr.
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := logging.Setup(os.Stderr, level)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Without client credentials the server cannot authorize anything,
	// so this fails before any transport starts listening.
	session, err := newSession(googleClientID, googleClientSecret)
	if err != nil {
		return err
	}
	if session.LoadTokens() {
		logger.Info("loaded stored Google token")
	} else {
		logger.Info("no stored Google token; run 'gdocs-mcp auth' to authorize")
	}

	serverContext := server.NewServerContext(shutdownCtx, session)

	// Wire metrics and the audit logger into the session and the
	// dispatcher path
	if provider.Enabled() {
		session.SetMetrics(provider.Metrics())
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Health:                  server.NewHealthChecker(serverContext),
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(shutdownCtx, serverContext, logger)
	case "http":
		return runHTTPServer(shutdownCtx, serverContext, httpAddr, metricsConfig, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, http)", transport)
	}
}

// newSession resolves credentials, opens the token store and builds the
// shared OAuth session. Shared between serve and auth.
func newSession(clientID, clientSecret string) (*google.Session, error) {
	var explicit *google.ClientCredentials
	if clientID != "" || clientSecret != "" {
		explicit = &google.ClientCredentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		}
	}

	conf, err := google.ResolveConfig(explicit)
	if err != nil {
		return nil, err
	}

	store, err := google.NewTokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	return google.NewSession(conf, store), nil
}

func runStdioServer(ctx context.Context, serverContext *server.ServerContext, logger *slog.Logger) error {
	dispatcher := server.NewDispatcher(serverContext, version, instrumentation.TransportStdio, logger)
	stdio := server.NewStdioServer(dispatcher, os.Stdin, os.Stdout, logger)

	if err := stdio.Serve(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, serverContext *server.ServerContext, httpAddr string, metricsConfig MetricsConfig, logger *slog.Logger) error {
	dispatcher := server.NewDispatcher(serverContext, version, instrumentation.TransportHTTP, logger)

	httpServer, err := server.NewHTTPServer(server.HTTPServerConfig{
		Addr:       server.ResolveHTTPAddr(httpAddr),
		Version:    version,
		Dispatcher: dispatcher,
		Health:     server.NewHealthChecker(serverContext),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("starting HTTP transport",
		slog.String("addr", httpServer.Addr()),
		slog.String("rpc_endpoint", "/rpc"),
		slog.String("health_endpoint", "/health"))
	if metricsConfig.Enabled {
		logger.Info("metrics exposed", slog.String("endpoint", metricsConfig.Addr+"/metrics"))
	}

	if err := httpServer.Serve(ctx); err != nil {
		return fmt.Errorf("HTTP server stopped with error: %w", err)
	}
	return nil
}
