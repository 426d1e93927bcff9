// Package protocol defines the MCP JSON-RPC 2.0 message types and error codes.
//
// Errors returned anywhere in request handling are *Error values so they can
// be written to the wire unchanged:
//
//	err := protocol.NewInvalidParams("invalid arguments").WithData(issues)
//
// errors.Is compares two *Error values by code only, which lets callers test
// for a class of failure without matching messages:
//
//	if errors.Is(err, protocol.NewNotFound("")) { ... }
package protocol
