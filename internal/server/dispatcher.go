package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/gdocs-mcp/internal/google"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/logging"
	"github.com/teemow/gdocs-mcp/internal/protocol"
	"github.com/teemow/gdocs-mcp/internal/tools"
)

// ServerName is the name advertised in the initialize handshake.
const ServerName = "gdocs-mcp"

// Dispatcher routes JSON-RPC messages to protocol methods. One
// dispatcher serves one transport; both transports share its behavior
// byte for byte.
type Dispatcher struct {
	sc        *ServerContext
	version   string
	transport string
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher bound to one transport. A nil
// logger falls back to slog.Default().
func NewDispatcher(sc *ServerContext, version, transport string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sc:        sc,
		version:   version,
		transport: transport,
		logger:    logging.WithTransport(logger, transport),
	}
}

// HandleMessage processes one raw JSON-RPC message and returns the
// serialized response, or nil when the message is a notification.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) []byte {
	resp := d.Handle(ctx, raw)
	if resp == nil {
		return nil
	}
	return marshalResponse(resp)
}

// Handle is HandleMessage before serialization. The HTTP binding uses
// the structured envelope to choose a status code; stdio never needs
// it.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) *protocol.Response {
	start := time.Now()

	var req protocol.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		d.logger.Debug("unparsable message", logging.Err(err))
		resp := errorResponse(nil, protocol.NewError(protocol.CodeParseError, fmt.Sprintf("parse error: %v", err), nil))
		d.recordRPC(ctx, "", resp, start)
		return resp
	}

	if err := protocol.ValidateRequest(&req); err != nil {
		d.logger.Debug("invalid request", logging.Method(req.Method), logging.Err(err))
		resp := errorResponse(req.ID, protocol.NewError(protocol.CodeInvalidRequest, err.Error(), nil))
		d.recordRPC(ctx, req.Method, resp, start)
		return resp
	}

	ctx, span := instrumentation.StartRequestSpan(ctx, d.transport, req.Method)
	defer span.End()

	resp := d.route(ctx, &req)

	// Notifications are processed but never answered.
	if resp == nil || req.ID == nil {
		instrumentation.SetSpanSuccess(span)
		return nil
	}

	if resp.Error != nil {
		instrumentation.SetSpanError(span, resp.Error)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	d.recordRPC(ctx, req.Method, resp, start)
	return resp
}

// route dispatches a validated envelope to its method handler.
func (d *Dispatcher) route(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Method {
	case protocol.MethodInitialize:
		d.logger.Debug("initialize", logging.Method(req.Method))
		return resultResponse(req.ID, d.initializeResult())

	case protocol.MethodToolsList:
		return resultResponse(req.ID, protocol.ToolListResult{Tools: tools.Catalog()})

	case protocol.MethodToolsCall:
		return d.handleToolsCall(ctx, req)

	case protocol.MethodPing:
		return resultResponse(req.ID, struct{}{})

	default:
		if req.ID == nil && strings.HasPrefix(req.Method, protocol.NotificationsPrefix) {
			d.logger.Debug("notification received", logging.Method(req.Method))
			return nil
		}
		return errorResponse(req.ID, protocol.NewError(protocol.CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil))
	}
}

// initializeResult is the fixed handshake payload. The catalog never
// changes at runtime, so listChanged stays unset.
func (d *Dispatcher) initializeResult() protocol.InitializeResult {
	return protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities: protocol.ServerCapabilities{
			Tools: &protocol.ToolsCapability{},
		},
		ServerInfo: protocol.Implementation{
			Name:    ServerName,
			Version: d.version,
		},
	}
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *protocol.Request) *protocol.Response {
	var params protocol.CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, protocol.NewError(protocol.CodeInvalidParams, fmt.Sprintf("invalid tools/call params: %v", err), nil))
		}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	// The catalog is public, execution is not. The gate precedes name
	// resolution, so the answer is the same for known and unknown
	// tools.
	if !d.sc.Session().IsAuthenticated() {
		d.logger.Debug("tool call rejected", logging.Tool(params.Name), logging.Status("unauthenticated"))
		return resultResponse(req.ID, protocol.NewToolError(tools.NotAuthenticatedMessage))
	}

	inv, err := tools.ParseCall(params.Name, params.Arguments)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return errorResponse(req.ID, rpcErr)
		}
		return errorResponse(req.ID, protocol.NewError(protocol.CodeInternalError, err.Error(), nil))
	}

	return resultResponse(req.ID, d.executeTool(ctx, params.Name, params.Arguments, inv))
}

// executeTool runs one parsed invocation with tool-level
// instrumentation. Capability failures become error-flagged results,
// never transport errors.
func (d *Dispatcher) executeTool(ctx context.Context, name string, args map[string]interface{}, inv tools.Invocation) *protocol.CallToolResult {
	ctx, span := instrumentation.StartToolSpan(ctx, name)
	defer span.End()

	start := time.Now()
	record := instrumentation.NewToolInvocation(name).WithSpanContext(ctx)
	if service, operation, ok := tools.ServiceOperation(name); ok {
		record.WithService(service, operation)
	}
	resource, a1Range, query := tools.AuditFields(args)
	if resource != "" {
		record.WithResource(resource)
	}
	if a1Range != "" {
		record.WithRange(a1Range)
	}
	if query != "" {
		record.WithQuery(query)
	}

	text, err := tools.Execute(ctx, d.sc.Session(), inv)
	duration := time.Since(start)

	var result *protocol.CallToolResult
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		record.CompleteWithError(err)
		instrumentation.SetSpanError(span, err)
		d.logger.Warn("tool call failed", logging.Tool(name), logging.Err(err))
		result = protocol.NewToolError(failureText(name, err))
	} else {
		record.CompleteSuccess()
		instrumentation.SetSpanSuccess(span)
		result = protocol.NewToolResult(text)
	}

	if m := d.sc.Metrics(); m != nil {
		m.RecordToolInvocation(ctx, name, status, duration)
	}
	if audit := d.sc.AuditLogger(); audit != nil {
		audit.LogToolInvocation(record)
	}
	return result
}

// failureText renders a capability failure as user-facing tool output.
// A session demoted mid-call reads the same as one that was never
// authenticated.
func failureText(name string, err error) string {
	if errors.Is(err, google.ErrNotAuthenticated) {
		return tools.NotAuthenticatedMessage
	}
	return fmt.Sprintf("%s failed: %v", name, err)
}

// recordRPC records one request against the rpc metrics. The method
// label is normalized so arbitrary client strings never become label
// values.
func (d *Dispatcher) recordRPC(ctx context.Context, method string, resp *protocol.Response, start time.Time) {
	m := d.sc.Metrics()
	if m == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if resp.Error != nil {
		status = instrumentation.StatusError
	}
	m.RecordRPCRequest(ctx, d.transport, instrumentation.NormalizeMethod(method), status, time.Since(start))
}

func resultResponse(id *protocol.RequestID, result interface{}) *protocol.Response {
	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, protocol.NewError(protocol.CodeInternalError, fmt.Sprintf("marshal result: %v", err), nil))
	}
	return &protocol.Response{
		JSONRPC: protocol.Version,
		ID:      id,
		Result:  raw,
	}
}

func errorResponse(id *protocol.RequestID, rpcErr *protocol.Error) *protocol.Response {
	return &protocol.Response{
		JSONRPC: protocol.Version,
		ID:      id,
		Error:   rpcErr,
	}
}

func marshalResponse(resp *protocol.Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		fallback := protocol.Response{
			JSONRPC: protocol.Version,
			ID:      resp.ID,
			Error:   protocol.NewError(protocol.CodeInternalError, "internal error", nil),
		}
		data, _ = json.Marshal(&fallback)
	}
	return data
}
