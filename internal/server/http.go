package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/teemow/gdocs-mcp/internal/logging"
	"github.com/teemow/gdocs-mcp/internal/protocol"
)

const (
	// DefaultHTTPAddr is the default bind address for the HTTP
	// transport.
	DefaultHTTPAddr = ":8080"

	// maxRequestBodySize caps POST /rpc bodies at 10 MB.
	maxRequestBodySize = 10 * 1024 * 1024

	// defaultHTTPReadHeaderTimeout bounds slow-header clients.
	defaultHTTPReadHeaderTimeout = 10 * time.Second
)

// ResolveHTTPAddr picks the HTTP bind address. A flag value that is
// not the default wins outright; otherwise the first non-empty of
// GDOCS_MCP_PORT and PORT, then the fixed default.
func ResolveHTTPAddr(flagAddr string) string {
	if flagAddr != "" && flagAddr != DefaultHTTPAddr {
		return flagAddr
	}
	if port := os.Getenv("GDOCS_MCP_PORT"); port != "" {
		return portToAddr(port)
	}
	if port := os.Getenv("PORT"); port != "" {
		return portToAddr(port)
	}
	return DefaultHTTPAddr
}

// portToAddr accepts both a bare port ("8081", the Cloud Run
// convention) and a full bind address ("localhost:8081").
func portToAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// serverMetadata is the static payload served at GET /.
type serverMetadata struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// HTTPServerConfig holds the wiring for the HTTP transport.
type HTTPServerConfig struct {
	// Addr is the bind address, e.g. ":8080".
	Addr string

	// Version is the server version advertised at GET /.
	Version string

	// Dispatcher handles POST /rpc bodies. Required.
	Dispatcher *Dispatcher

	// Health backs GET /health. Created on demand when nil.
	Health *HealthChecker

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// HTTPServer is the stateless HTTP binding of the dispatcher. Every
// request carries its own message; nothing is retained between calls.
type HTTPServer struct {
	dispatcher *Dispatcher
	health     *HealthChecker
	logger     *slog.Logger
	version    string
	addr       string
	handler    http.Handler
	httpServer *http.Server
}

// NewHTTPServer creates the HTTP transport.
func NewHTTPServer(config HTTPServerConfig) (*HTTPServer, error) {
	if config.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required for http server")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	if config.Health == nil {
		config.Health = NewHealthChecker(nil)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &HTTPServer{
		dispatcher: config.Dispatcher,
		health:     config.Health,
		logger:     config.Logger,
		version:    config.Version,
		addr:       config.Addr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)
	s.handler = mux

	return s, nil
}

// Handler exposes the route table for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured bind address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Serve runs the server until the context is cancelled, then drains
// in-flight requests for up to DefaultShutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: defaultHTTPReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http transport ready", slog.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	s.logger.Info("http transport stopping")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// handleRPC hands one POST body to the dispatcher. A body the
// dispatcher cannot parse still produces its ParseError envelope, with
// the HTTP status downgraded to 400.
func (s *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		http.Error(w, "unsupported media type: expected application/json", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Handle(r.Context(), body)
	if resp == nil {
		// Notification: accepted, nothing to answer.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	status := http.StatusOK
	if resp.Error != nil && resp.Error.Code == protocol.CodeParseError {
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(marshalResponse(resp)); err != nil {
		s.logger.Error("write rpc response", logging.Err(err))
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.health.LivenessHandler().ServeHTTP(w, r)
}

// handleRoot serves the static metadata document. The catch-all
// pattern also owns every unknown path, so anything but exactly "/"
// is a 404.
func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	meta := serverMetadata{
		Name:        ServerName,
		Version:     s.version,
		Description: "MCP server exposing read access to Google Docs and Sheets",
		Endpoints: map[string]string{
			"rpc":    "/rpc",
			"health": "/health",
		},
	}

	data, err := json.Marshal(meta)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write metadata", logging.Err(err))
	}
}
