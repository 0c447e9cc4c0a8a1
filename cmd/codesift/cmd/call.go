package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/output"
	"github.com/Aman-CERP/codesift/internal/rpc"
)

func newCallCmd(a *app) *cobra.Command {
	var paths []string

	cmd := &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Send one request to a fresh server process",
		Long: `Start 'codesift serve' as a child process, send a single JSON-RPC request
and print its result as JSON.

With --index the child first builds an index over the given paths, so search
and stats have something to work on. Build counters go to stderr.`,
		Example: `  codesift call ping
  codesift call analyze '{"content":"fn main() {}","path":"main.rs"}'
  codesift call --index src search '{"query":"parse token","top_k":3}'`,
		Args:        cobra.RangeArgs(1, 2),
		Annotations: interactive(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params json.RawMessage
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return sifterrors.InvalidParam("params", "must be valid JSON")
				}
				params = json.RawMessage(args[1])
			}
			return runCall(cmd, a, args[0], params, paths)
		},
	}

	cmd.Flags().StringSliceVarP(&paths, "index", "i", nil, "Paths to index before the call (repeatable)")

	return cmd
}

func runCall(cmd *cobra.Command, a *app, method string, params json.RawMessage, paths []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	conn, err := startServer(ctx, a.level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("server_exit_failed", slog.String("error", err.Error()))
		}
	}()

	client := rpc.NewClient(conn, conn)
	if len(paths) > 0 {
		stats, err := client.BuildIndex(ctx, paths)
		if err != nil {
			return callError(rpc.MethodBuildIndex, err)
		}
		output.New(cmd.ErrOrStderr()).BuildStats(stats)
	}

	var p any
	if params != nil {
		p = params
	}
	var result json.RawMessage
	if err := client.Call(ctx, method, p, &result); err != nil {
		return callError(method, err)
	}
	return output.New(cmd.OutOrStdout()).JSON(result)
}

// callError turns an error response back into a coded error.
func callError(method string, err error) error {
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		return sifterrors.IOError(fmt.Sprintf("%s: %v", method, err), err)
	}

	code := sifterrors.ErrCodeInternal
	switch rpcErr.Code {
	case rpc.ErrCodeMethodNotFound, rpc.ErrCodeInvalidRequest:
		code = sifterrors.ErrCodeInvalidParam
	}
	if data, ok := rpcErr.Data.(map[string]any); ok {
		if c, ok := data["error_code"].(string); ok && c != "" {
			code = c
		}
	}
	return sifterrors.New(code, rpcErr.Message, rpcErr)
}

// serverProcess is a child 'codesift serve' reachable over its stdio pipes.
type serverProcess struct {
	io.Reader
	io.WriteCloser
	cmd *exec.Cmd
}

// startServer launches the current executable in serve mode. The child's
// diagnostics go to stderr.
func startServer(ctx context.Context, level string, stderr io.Writer) (*serverProcess, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, sifterrors.IOError("failed to locate codesift executable", err)
	}

	args := []string{"serve"}
	if level != "" {
		args = append(args, "--log-level", level)
	}
	child := exec.CommandContext(ctx, exe, args...)
	child.Stderr = stderr

	stdin, err := child.StdinPipe()
	if err != nil {
		return nil, sifterrors.IOError("failed to open server stdin", err)
	}
	stdout, err := child.StdoutPipe()
	if err != nil {
		return nil, sifterrors.IOError("failed to open server stdout", err)
	}
	if err := child.Start(); err != nil {
		return nil, sifterrors.IOError("failed to start server", err)
	}

	slog.Debug("server_process_started", slog.Int("pid", child.Process.Pid))
	return &serverProcess{Reader: stdout, WriteCloser: stdin, cmd: child}, nil
}

// Close ends the request stream and waits for the child to exit.
func (p *serverProcess) Close() error {
	_ = p.WriteCloser.Close()
	return p.cmd.Wait()
}
