package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/symbols"
)

// Client speaks the line protocol to a server over a reader/writer pair,
// such as the pipes of a child process. Calls are serialized.
//
// A call blocked on reading its response is not interrupted by ctx; close the
// underlying reader to unblock it.
type Client struct {
	mu        sync.Mutex
	reader    *bufio.Reader
	writer    io.Writer
	requestID atomic.Uint64
}

// rawResponse defers decoding of the result until the caller's type is known.
type rawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// NewClient creates a client reading responses from r and writing requests to w.
func NewClient(r io.Reader, w io.Writer) *Client {
	return &Client{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Call sends method with params and decodes the result into result (which may be nil).
// A JSON-RPC error response is returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	req := Request{
		JSONRPC: Version,
		Method:  method,
		ID:      c.nextID(),
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = data
	}

	if err := c.send(req); err != nil {
		return err
	}
	resp, err := c.receive()
	if err != nil {
		return err
	}

	if !bytes.Equal(resp.ID, req.ID) {
		return fmt.Errorf("response id %s does not match request id %s", resp.ID, req.ID)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// Ping checks that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	var reply string
	if err := c.Call(ctx, MethodPing, nil, &reply); err != nil {
		return err
	}
	if reply != Pong {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// BuildIndex asks the server to index paths.
func (c *Client) BuildIndex(ctx context.Context, paths []string) (index.BuildStats, error) {
	var stats index.BuildStats
	err := c.Call(ctx, MethodBuildIndex, BuildIndexParams{Paths: paths}, &stats)
	return stats, err
}

// Search runs query on the server. A non-positive topK uses the server default.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]index.Match, error) {
	params := SearchParams{Query: &query}
	if topK > 0 {
		params.TopK = &topK
	}

	var result SearchResult
	if err := c.Call(ctx, MethodSearch, params, &result); err != nil {
		return nil, err
	}
	return result.Matches, nil
}

// Analyze extracts symbols from content on the server.
func (c *Client) Analyze(ctx context.Context, content, path string) (symbols.Result, error) {
	var result symbols.Result
	err := c.Call(ctx, MethodAnalyze, AnalyzeParams{Content: &content, Path: path}, &result)
	return result, err
}

// Stats retrieves corpus statistics from the server.
func (c *Client) Stats(ctx context.Context) (index.Stats, error) {
	var stats index.Stats
	err := c.Call(ctx, MethodStats, nil, &stats)
	return stats, err
}

func (c *Client) nextID() json.RawMessage {
	return json.RawMessage(strconv.FormatUint(c.requestID.Add(1), 10))
}

func (c *Client) send(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func (c *Client) receive() (*rawResponse, error) {
	for {
		line, err := c.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var resp rawResponse
			if decodeErr := json.Unmarshal(line, &resp); decodeErr != nil {
				return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
			}
			return &resp, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
	}
}
