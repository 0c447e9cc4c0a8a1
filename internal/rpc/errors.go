package rpc

import (
	"errors"
	"fmt"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
)

// MapError converts a handler error into a JSON-RPC error.
// Validation errors become invalid params, an unbuilt index gets its own code,
// and everything else is an internal error carrying the error's message.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var siftErr *sifterrors.SiftError
	if errors.As(err, &siftErr) {
		return mapSiftError(siftErr)
	}

	return &Error{
		Code:    ErrCodeInternalError,
		Message: err.Error(),
	}
}

func mapSiftError(se *sifterrors.SiftError) *Error {
	data := map[string]string{"error_code": se.Code}

	switch {
	case se.Code == sifterrors.ErrCodeIndexNotBuilt:
		return &Error{Code: ErrCodeIndexNotBuilt, Message: se.Message, Data: data}
	case se.Category == sifterrors.CategoryValidation:
		return &Error{Code: ErrCodeInvalidParams, Message: se.Message, Data: data}
	default:
		message := se.Message
		if se.Cause != nil && se.Cause.Error() != se.Message {
			message = fmt.Sprintf("%s: %v", se.Message, se.Cause)
		}
		return &Error{Code: ErrCodeInternalError, Message: message, Data: data}
	}
}

// NewMethodNotFoundError creates an error naming the unknown method.
func NewMethodNotFoundError(method string) *Error {
	return &Error{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("method not found: %s", method),
	}
}

// NewInvalidRequestError creates an error for a request that is not a valid JSON-RPC object.
func NewInvalidRequestError(reason string) *Error {
	return &Error{
		Code:    ErrCodeInvalidRequest,
		Message: fmt.Sprintf("invalid request: %s", reason),
	}
}
