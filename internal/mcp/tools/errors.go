package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"

	"github.com/xkong/wechatbackends/pkg/client"
	"github.com/xkong/wechatbackends/pkg/contenttype"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotLoggedIn  = "NOT_LOGGED_IN"
	ErrCodeLoginFailed  = "LOGIN_FAILED"
	ErrCodeServerError  = "SERVER_ERROR"
	ErrCodeHTTPError    = "HTTP_ERROR"
	ErrCodeDecodeError  = "DECODE_ERROR"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeForbidden    = "FORBIDDEN"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapConsoleError converts a client error into a coded error.
func WrapConsoleError(err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	coded = &CodedError{Cause: err}

	var (
		serverErr *client.ServerError
		apiErr    *client.APIError
		decodeErr *client.DecodeError
		netErr    net.Error
		pathErr   *fs.PathError
	)
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		coded.Code, coded.Message = ErrCodeNotLoggedIn, "log in first"
	case errors.Is(err, client.ErrLogin):
		coded.Code, coded.Message = ErrCodeLoginFailed, "login rejected"
	case errors.Is(err, client.ErrNoArticles), errors.Is(err, client.ErrTooManyArticles):
		coded.Code, coded.Message = ErrCodeInvalidInput, "bad article batch"
	case errors.As(err, &pathErr):
		coded.Code, coded.Message = ErrCodeInvalidInput, "cannot read "+pathErr.Path
	case errors.As(err, &serverErr):
		coded.Code, coded.Message = ErrCodeServerError, fmt.Sprintf("console returned ret %d", serverErr.Ret)
	case errors.As(err, &apiErr):
		coded.Code, coded.Message = ErrCodeHTTPError, fmt.Sprintf("console returned HTTP %d", apiErr.StatusCode)
	case errors.As(err, &decodeErr):
		coded.Code, coded.Message = ErrCodeDecodeError, "unexpected response body"
		if decodeErr.Category == contenttype.HTML {
			coded.Message = "got an HTML page, the session has probably expired"
		}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		coded.Code, coded.Message = ErrCodeTimeout, "request timed out"
	default:
		coded.Code, coded.Message = ErrCodeServerError, "console call failed"
	}

	slog.Warn("console error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
		slog.String("error", err.Error()),
	)
	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// ErrForbidden creates an error for an operation the server is configured
// to refuse.
func ErrForbidden(message string) error {
	return &CodedError{
		Code:    ErrCodeForbidden,
		Message: message,
	}
}
