package rpc

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/codesift/internal/index"
)

// connect runs srv on in-memory pipes and returns a client wired to it.
func connect(t *testing.T, srv *Server) *Client {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(context.Background(), reqR, respW)
		_ = respW.Close()
		done <- err
	}()

	t.Cleanup(func() {
		_ = reqW.Close()
		require.NoError(t, <-done)
	})
	return NewClient(respR, reqW)
}

func TestClient_Ping(t *testing.T) {
	client := connect(t, newFakeServer(&fakeIndexer{}))
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_RoundTrip(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.rs"), []byte("fn parse_token() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.rs"), []byte("fn render_frame() {}"), 0o644))

	client := connect(t, newCollectorServer(t))
	ctx := context.Background()

	_, err = client.Search(ctx, "parse", 5)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, ErrCodeIndexNotBuilt, rpcErr.Code)

	stats, err := client.BuildIndex(ctx, []string{dir, filepath.Join(dir, "missing")})
	require.NoError(t, err)
	assert.Equal(t, index.BuildStats{Indexed: 2, Skipped: 0, Errors: 1, TotalFiles: 2}, stats)

	matches, err := client.Search(ctx, "parse", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "a.rs"), matches[0].Path)
	assert.Equal(t, "fn parse_token() {}", matches[0].Snippet)

	corpus, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.Files)

	result, err := client.Analyze(ctx, "class Greeter:\n    def greet(self):\n        pass", "greet.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"Greeter"}, result.Symbols.Classes)
	assert.Contains(t, result.Symbols.Functions, "greet")
	assert.Equal(t, "python", result.Language)
}

func TestClient_ErrorResponse(t *testing.T) {
	client := connect(t, newFakeServer(&fakeIndexer{}))

	err := client.Call(context.Background(), "frobnicate", nil, nil)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, ErrCodeMethodNotFound, rpcErr.Code)
	assert.Contains(t, err.Error(), "frobnicate")

	_, err = client.BuildIndex(context.Background(), nil)
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, ErrCodeInvalidParams, rpcErr.Code)
}

func TestClient_CancelledContext(t *testing.T) {
	client := connect(t, newFakeServer(&fakeIndexer{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Ping(ctx)
	assert.True(t, errors.Is(err, context.Canceled))

	// The connection is still usable afterwards.
	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_MismatchedResponseID(t *testing.T) {
	client := NewClient(strings.NewReader(`{"jsonrpc":"2.0","result":"pong","id":99}`+"\n"), io.Discard)

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestClient_ServerGone(t *testing.T) {
	client := NewClient(strings.NewReader(""), io.Discard)

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF))
}
