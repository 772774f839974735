package client

import (
	"errors"
	"fmt"

	"github.com/xkong/wechatbackends/pkg/contenttype"
)

// Response codes with a meaning for the client.
const (
	RetOK              = 0
	RetAlreadyLoggedIn = 65202
)

// MaxArticles is the largest batch the console accepts in one app message.
const MaxArticles = 8

var (
	// ErrLogin is matched by every *LoginError.
	ErrLogin = errors.New("login failed")

	// ErrNotLoggedIn is returned by operations called before Login.
	ErrNotLoggedIn = errors.New("client is not logged in")

	// ErrTicketNotFound means the listing page had no upload ticket in it.
	ErrTicketNotFound = errors.New("upload ticket not found in listing page")

	// ErrNoArticles is returned for an empty article batch.
	ErrNoArticles = errors.New("article batch is empty")

	// ErrTooManyArticles is returned when a batch exceeds MaxArticles.
	ErrTooManyArticles = fmt.Errorf("article batch exceeds %d articles", MaxArticles)
)

// LoginError reports a rejected login.
type LoginError struct {
	Ret int
	Msg string
}

func (e *LoginError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("login failed: ret %d: %s", e.Ret, e.Msg)
	}
	return fmt.Sprintf("login failed: ret %d", e.Ret)
}

// Is makes errors.Is(err, ErrLogin) hold.
func (e *LoginError) Is(target error) bool {
	return target == ErrLogin
}

// ServerError is a failure the console reported inside a 200 response.
type ServerError struct {
	Ret int
	Msg string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned ret %d: %s", e.Ret, e.Msg)
}

// APIError represents an HTTP error status from the console.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("console HTTP error %d: %s", e.StatusCode, e.Message)
}

// DecodeError is returned when a response body is not the expected JSON.
type DecodeError struct {
	Category contenttype.Category
	Snippet  string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Category == contenttype.HTML {
		return fmt.Sprintf("decoding response: got an HTML page, the session may have expired: %v", e.Err)
	}
	return fmt.Sprintf("decoding response (%s): %v", e.Category, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ContentImage is the result of an inline content image upload.
type ContentImage struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ContentImageOK is the state reported for a successful content image upload.
const ContentImageOK = "SUCCESS"
