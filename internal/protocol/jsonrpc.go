package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC version tag required on every envelope
const Version = "2.0"

// Request is a single JSON-RPC 2.0 request envelope
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"` // nil for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RequestID is the string-or-number request correlation id.
// JSON-RPC allows either; the id is echoed back verbatim in the response.
type RequestID struct {
	Str *string
	Num *int64
}

// MarshalJSON implements json.Marshaler
func (r *RequestID) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	if r.Str != nil {
		return json.Marshal(r.Str)
	}
	if r.Num != nil {
		return json.Marshal(r.Num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RequestID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Str = &s
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		r.Num = &n
		return nil
	}

	if string(data) == "null" {
		return nil
	}

	return fmt.Errorf("invalid request id: %s", data)
}

// String returns a printable form of the id for logging
func (r *RequestID) String() string {
	if r == nil {
		return "null"
	}
	if r.Str != nil {
		return *r.Str
	}
	if r.Num != nil {
		return fmt.Sprintf("%d", *r.Num)
	}
	return "null"
}

// StringID creates a RequestID from a string
func StringID(s string) *RequestID {
	return &RequestID{Str: &s}
}

// NumericID creates a RequestID from a number
func NumericID(n int64) *RequestID {
	return &RequestID{Num: &n}
}

// Response is a single JSON-RPC 2.0 response envelope.
// Exactly one of Result and Error is present.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	CodeParseError     = -32700 // body is not valid JSON
	CodeInvalidRequest = -32600 // envelope is not a valid JSON-RPC request
	CodeMethodNotFound = -32601 // method or tool does not exist
	CodeInvalidParams  = -32602 // params failed validation
	CodeInternalError  = -32603 // dispatcher-internal fault
)

// NewError creates an Error with optional structured data
func NewError(code int, message string, data interface{}) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if data != nil {
		if dataJSON, err := json.Marshal(data); err == nil {
			e.Data = dataJSON
		}
	}
	return e
}

// Error implements the error interface so wire errors can travel
// through ordinary error returns and be recovered with errors.As.
func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("jsonrpc error %d: %s (data: %s)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}
