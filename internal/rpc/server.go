package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/symbols"
)

// Indexer builds and searches the corpus. *index.Collector implements it.
type Indexer interface {
	BuildIndex(ctx context.Context, paths []string) (index.BuildStats, error)
	Search(ctx context.Context, query string, topK int) ([]index.Match, error)
	Stats() index.Stats
}

// Analyzer extracts symbols from source text. *symbols.Extractor implements it.
type Analyzer interface {
	Analyze(content, path string) symbols.Result
}

// Options configures request handling.
type Options struct {
	// DefaultLimit is the number of matches returned when a search names none.
	DefaultLimit int

	// MaxLimit caps the number of matches a search may ask for.
	MaxLimit int
}

// DefaultOptions returns the limits used when no configuration is loaded.
func DefaultOptions() Options {
	return Options{
		DefaultLimit: 5,
		MaxLimit:     100,
	}
}

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server answers line-delimited JSON-RPC requests one at a time.
type Server struct {
	indexer  Indexer
	analyzer Analyzer
	opts     Options
	handlers map[string]handlerFunc
}

// NewServer creates a server dispatching to indexer and analyzer.
func NewServer(indexer Indexer, analyzer Analyzer, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaults.MaxLimit
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}

	s := &Server{
		indexer:  indexer,
		analyzer: analyzer,
		opts:     opts,
	}
	s.handlers = map[string]handlerFunc{
		MethodPing:       s.handlePing,
		MethodBuildIndex: s.handleBuildIndex,
		MethodSearch:     s.handleSearch,
		MethodAnalyze:    s.handleAnalyze,
		MethodStats:      s.handleStats,
	}
	return s
}

// Serve reads requests from r and writes one response line per request to w.
// It returns nil at end of input and the read error otherwise. A line left
// unterminated at end of input is still answered. Cancelling ctx stops the
// loop before the next request is read.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	slog.Info("server_started")
	served := 0
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("server_stopped", slog.String("reason", "context"), slog.Int("requests", served))
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			resp := s.handleLine(ctx, line)
			if err := writeResponse(writer, resp); err != nil {
				return err
			}
			served++
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				slog.Info("server_stopped", slog.String("reason", "eof"), slog.Int("requests", served))
				return nil
			}
			return fmt.Errorf("read request: %w", readErr)
		}
	}
}

// handleLine turns one raw request line into its response.
func (s *Server) handleLine(ctx context.Context, line []byte) Response {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			slog.Debug("request_unparseable", slog.String("error", err.Error()))
			return NewErrorResponse(nil, ErrCodeParseError, fmt.Sprintf("parse error: %v", err))
		}
		return invalidRequest(nil, "request must be a JSON object")
	}
	if fields == nil {
		return invalidRequest(nil, "request must be a JSON object")
	}

	id := fields["id"]

	var version string
	if raw, ok := fields["jsonrpc"]; !ok || json.Unmarshal(raw, &version) != nil || version != Version {
		return invalidRequest(id, `jsonrpc must be "2.0"`)
	}

	var method string
	if raw, ok := fields["method"]; !ok || json.Unmarshal(raw, &method) != nil {
		return invalidRequest(id, "method must be a string")
	}

	return s.dispatch(ctx, Request{
		JSONRPC: version,
		Method:  method,
		Params:  fields["params"],
		ID:      id,
	})
}

func invalidRequest(id json.RawMessage, reason string) Response {
	return Response{JSONRPC: Version, Error: NewInvalidRequestError(reason), ID: id}
}

// dispatch routes a well-formed request to its handler. A panicking handler
// produces an internal error response and leaves the loop running.
func (s *Server) dispatch(ctx context.Context, req Request) (resp Response) {
	handler, ok := s.handlers[req.Method]
	if !ok {
		slog.Debug("method_not_found", slog.String("method", req.Method))
		return Response{JSONRPC: Version, Error: NewMethodNotFoundError(req.Method), ID: req.ID}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler_panic",
				slog.String("method", req.Method),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
			resp = NewErrorResponse(req.ID, ErrCodeInternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	result, err := handler(ctx, req.Params)
	if err != nil {
		rpcErr := MapError(err)
		attrs := []slog.Attr{
			slog.String("method", req.Method),
			slog.Int("code", rpcErr.Code),
		}
		slog.LogAttrs(ctx, slog.LevelWarn, "request_failed", append(attrs, sifterrors.LogAttrs(err)...)...)
		return Response{JSONRPC: Version, Error: rpcErr, ID: req.ID}
	}

	slog.Debug("request_handled",
		slog.String("method", req.Method),
		slog.Duration("duration", time.Since(start)))
	return NewSuccessResponse(req.ID, result)
}

func writeResponse(w *bufio.Writer, resp Response) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		slog.Error("response_encode_failed", slog.String("error", err.Error()))
		buf.Reset()
		fallback := NewErrorResponse(resp.ID, ErrCodeInternalError, "failed to encode response")
		if err := enc.Encode(fallback); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}

// decodeParams fills v from raw params. Absent or null params leave v untouched.
func decodeParams(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return sifterrors.InvalidParam("params", "expected an object")
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return sifterrors.InvalidParam(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
		}
		return sifterrors.InvalidParam("params", err.Error())
	}
	return nil
}

func (s *Server) handlePing(_ context.Context, _ json.RawMessage) (any, error) {
	return Pong, nil
}

func (s *Server) handleBuildIndex(ctx context.Context, params json.RawMessage) (any, error) {
	var p BuildIndexParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Paths) == 0 {
		return nil, sifterrors.MissingParam("paths")
	}

	stats, err := s.indexer.BuildIndex(ctx, p.Paths)
	if err != nil {
		return nil, sifterrors.New(sifterrors.ErrCodeIndexFailed, "build index failed", err)
	}
	return stats, nil
}

func (s *Server) handleSearch(ctx context.Context, params json.RawMessage) (any, error) {
	var p SearchParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == nil || *p.Query == "" {
		return nil, sifterrors.MissingParam("query")
	}

	limit, field := s.opts.DefaultLimit, "top_k"
	switch {
	case p.TopK != nil:
		limit = *p.TopK
	case p.Limit != nil:
		limit, field = *p.Limit, "limit"
	}
	if limit <= 0 {
		return nil, sifterrors.InvalidParam(field, "must be a positive integer")
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	matches, err := s.indexer.Search(ctx, *p.Query, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []index.Match{}
	}
	return SearchResult{Matches: matches}, nil
}

func (s *Server) handleAnalyze(_ context.Context, params json.RawMessage) (any, error) {
	var p AnalyzeParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Content == nil {
		return nil, sifterrors.MissingParam("content")
	}
	return s.analyzer.Analyze(*p.Content, p.Path), nil
}

func (s *Server) handleStats(_ context.Context, _ json.RawMessage) (any, error) {
	return s.indexer.Stats(), nil
}
