package rpc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "missing param",
			err:         sifterrors.MissingParam("query"),
			wantCode:    ErrCodeInvalidParams,
			wantMessage: "missing required parameter: query",
		},
		{
			name:        "invalid param",
			err:         sifterrors.InvalidParam("top_k", "must be a positive integer"),
			wantCode:    ErrCodeInvalidParams,
			wantMessage: "invalid parameter top_k: must be a positive integer",
		},
		{
			name:        "index not built",
			err:         sifterrors.IndexNotBuilt(),
			wantCode:    ErrCodeIndexNotBuilt,
			wantMessage: "index not built: call build_index first",
		},
		{
			name:        "wrapped index not built",
			err:         fmt.Errorf("search: %w", sifterrors.IndexNotBuilt()),
			wantCode:    ErrCodeIndexNotBuilt,
			wantMessage: "index not built: call build_index first",
		},
		{
			name:        "io error with cause",
			err:         sifterrors.IOError("read failed", errors.New("disk gone")),
			wantCode:    ErrCodeInternalError,
			wantMessage: "read failed: disk gone",
		},
		{
			name:        "wrapped plain error keeps one copy of the message",
			err:         sifterrors.Wrap(sifterrors.ErrCodeInternal, errors.New("oops")),
			wantCode:    ErrCodeInternalError,
			wantMessage: "oops",
		},
		{
			name:        "unknown error",
			err:         errors.New("something broke"),
			wantCode:    ErrCodeInternalError,
			wantMessage: "something broke",
		},
		{
			name:        "rpc error passes through",
			err:         NewMethodNotFoundError("x"),
			wantCode:    ErrCodeMethodNotFound,
			wantMessage: "method not found: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_CarriesErrorCode(t *testing.T) {
	got := MapError(sifterrors.MissingParam("paths"))
	assert.Equal(t, map[string]string{"error_code": sifterrors.ErrCodeMissingParam}, got.Data)
}

func TestError_Error(t *testing.T) {
	err := &Error{Code: ErrCodeParseError, Message: "parse error"}
	assert.Equal(t, "rpc error -32700: parse error", err.Error())
}
