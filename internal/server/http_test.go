package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/protocol"
	"github.com/teemow/gdocs-mcp/internal/tools"
)

func newTestHTTPServer(t *testing.T, authenticated bool) *HTTPServer {
	t.Helper()

	sc := newTestContext(t, authenticated)
	d := NewDispatcher(sc, testVersion, instrumentation.TransportHTTP, nil)
	s, err := NewHTTPServer(HTTPServerConfig{
		Dispatcher: d,
		Version:    testVersion,
	})
	require.NoError(t, err)
	return s
}

func TestNewHTTPServer_RequiresDispatcher(t *testing.T) {
	_, err := NewHTTPServer(HTTPServerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatcher is required")
}

func TestHTTPServer_EndToEndUnauthenticatedCall(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_sheet_data","arguments":{"spreadsheetId":"s","range":"Sheet1!A1:B2"}}}`
	resp, err := http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":1`)

	var envelope protocol.Response
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.Nil(t, envelope.Error)

	var result protocol.CallToolResult
	require.NoError(t, json.Unmarshal(envelope.Result, &result))
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, tools.NotAuthenticatedMessage, result.Content[0].Text)
}

func TestHTTPServer_RPCContentType(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{name: "json", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "plain text", contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing", contentType: "", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/rpc", strings.NewReader(body))
			require.NoError(t, err)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			} else {
				req.Header.Del("Content-Type")
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHTTPServer_RPCEmptyBody(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_RPCMalformedBody(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc", "application/json", strings.NewReader("{definitely not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope protocol.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, protocol.CodeParseError, envelope.Error.Code)
}

func TestHTTPServer_RPCMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPServer_RPCNotification(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/rpc", "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestHTTPServer_Health(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestHTTPServer_RootMetadata(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var meta serverMetadata
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	assert.Equal(t, ServerName, meta.Name)
	assert.Equal(t, testVersion, meta.Version)
	assert.Equal(t, "/rpc", meta.Endpoints["rpc"])
	assert.Equal(t, "/health", meta.Endpoints["health"])
}

func TestHTTPServer_UnknownPath(t *testing.T) {
	srv := httptest.NewServer(newTestHTTPServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_ServeStopsOnCancel(t *testing.T) {
	s := newTestHTTPServer(t, false)
	s.addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestResolveHTTPAddr(t *testing.T) {
	tests := []struct {
		name     string
		flagAddr string
		envPort  string
		envAlt   string
		want     string
	}{
		{name: "default everywhere", flagAddr: DefaultHTTPAddr, want: ":8080"},
		{name: "explicit flag wins", flagAddr: ":3000", envPort: "9999", want: ":3000"},
		{name: "gdocs port", flagAddr: DefaultHTTPAddr, envPort: "9999", want: ":9999"},
		{name: "generic port", flagAddr: DefaultHTTPAddr, envAlt: "7777", want: ":7777"},
		{name: "gdocs port beats generic", flagAddr: DefaultHTTPAddr, envPort: "9999", envAlt: "7777", want: ":9999"},
		{name: "full address in env", flagAddr: DefaultHTTPAddr, envPort: "localhost:8081", want: "localhost:8081"},
		{name: "empty flag", flagAddr: "", want: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Empty values read as unset.
			t.Setenv("GDOCS_MCP_PORT", tt.envPort)
			t.Setenv("PORT", tt.envAlt)

			assert.Equal(t, tt.want, ResolveHTTPAddr(tt.flagAddr))
		})
	}
}
