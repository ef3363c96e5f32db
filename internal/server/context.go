package server

import (
	"context"
	"sync"

	"github.com/teemow/gdocs-mcp/internal/google"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
)

// ServerContext holds the shared state of one server process: the
// OAuth session every tool call goes through, the optional
// instrumentation collaborators, and the shutdown lifecycle.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *google.Session

	mu          sync.RWMutex
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	shutdown    bool
}

// NewServerContext creates a server context around the given session.
func NewServerContext(ctx context.Context, session *google.Session) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		session: session,
	}
}

// Context returns the server lifetime context. It is cancelled when
// Shutdown is called.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Session returns the shared OAuth session.
func (sc *ServerContext) Session() *google.Session {
	return sc.session
}

// SetMetrics installs the metrics recorder. Safe to leave unset; the
// dispatcher skips recording when no recorder is present.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the installed metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger installs the audit logger. Safe to leave unset.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the installed audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server lifetime context. Idempotent.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
