package protocol

import (
	"errors"
	"fmt"
)

// JSON-RPC 2.0 codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Server-defined codes, taken from the range JSON-RPC reserves for
// implementations.
const (
	CodeNotFound    = -32001
	CodeRateLimited = -32003
)

var codeNames = map[int]string{
	CodeParseError:     "parse_error",
	CodeInvalidRequest: "invalid_request",
	CodeMethodNotFound: "method_not_found",
	CodeInvalidParams:  "invalid_params",
	CodeInternalError:  "internal_error",
	CodeNotFound:       "not_found",
	CodeRateLimited:    "rate_limited",
}

// CodeName returns a stable label for code, suitable for logs and metric
// attributes. Unknown codes map to "unknown".
func CodeName(code int) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return "unknown"
}

// Error is the error member of a JSON-RPC response and the only error shape
// a request can fail with.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("mcp: %s (code: %d)", e.Message, e.Code)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// WithData returns a copy of e carrying data.
func (e *Error) WithData(data any) *Error {
	c := *e
	c.Data = data
	return &c
}

// AsError returns the *Error in err's chain, or wraps err as an internal
// error. It returns nil for a nil err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return NewInternalError(err.Error())
}

func newError(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewParseError reports an undecodable frame.
func NewParseError(msg string) *Error { return newError(CodeParseError, msg) }

// NewInvalidRequest reports a frame that is JSON but not a valid request.
func NewInvalidRequest(msg string) *Error { return newError(CodeInvalidRequest, msg) }

// NewMethodNotFound reports an unsupported method.
func NewMethodNotFound(method string) *Error {
	return newError(CodeMethodNotFound, "method not found: "+method)
}

// NewInvalidParams reports parameters or arguments that fail validation.
func NewInvalidParams(msg string) *Error { return newError(CodeInvalidParams, msg) }

// NewInternalError reports a server-side fault.
func NewInternalError(msg string) *Error { return newError(CodeInternalError, msg) }

// NewNotFound reports an unknown capability.
func NewNotFound(msg string) *Error { return newError(CodeNotFound, msg) }

// NewRateLimited reports a request rejected by rate limiting.
func NewRateLimited(msg string) *Error { return newError(CodeRateLimited, msg) }
