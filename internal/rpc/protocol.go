// Package rpc serves the search engine over line-delimited JSON-RPC 2.0.
//
// Every request is one JSON object on one line; every request line gets
// exactly one response line, including notifications and malformed input.
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/Aman-CERP/codesift/internal/index"
)

// Version is the only accepted value of the "jsonrpc" member.
const Version = "2.0"

// JSON-RPC 2.0 method names.
const (
	MethodPing       = "ping"
	MethodBuildIndex = "build_index"
	MethodSearch     = "search"
	MethodAnalyze    = "analyze"
	MethodStats      = "stats"
)

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ErrCodeIndexNotBuilt is returned by search before anything was indexed.
const ErrCodeIndexNotBuilt = -32001

// Request represents a JSON-RPC 2.0 request.
//
// ID is kept raw so numbers, strings and null round-trip unchanged.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response. A nil ID encodes as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewSuccessResponse creates a successful response.
func NewSuccessResponse(id json.RawMessage, result any) Response {
	return Response{
		JSONRPC: Version,
		Result:  result,
		ID:      id,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, code int, message string) Response {
	return Response{
		JSONRPC: Version,
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// BuildIndexParams are the parameters for the build_index method.
type BuildIndexParams struct {
	// Paths are files or directories to index (required, non-empty).
	Paths []string `json:"paths"`
}

// SearchParams are the parameters for the search method.
type SearchParams struct {
	// Query is the free-text query (required, non-empty).
	Query *string `json:"query"`

	// TopK is the maximum number of matches (default from configuration).
	TopK *int `json:"top_k,omitempty"`

	// Limit is accepted as an alias of TopK. TopK wins when both are set.
	Limit *int `json:"limit,omitempty"`
}

// SearchResult is the result of the search method.
type SearchResult struct {
	Matches []index.Match `json:"matches"`
}

// AnalyzeParams are the parameters for the analyze method.
type AnalyzeParams struct {
	// Content is the source text (required, may be empty).
	Content *string `json:"content"`

	// Path is an optional hint used for language detection.
	Path string `json:"path,omitempty"`
}

// Pong is the result of the ping method.
const Pong = "pong"
