package todoist

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrNotConfigured is wrapped by the ConfigurationError returned when no
// API token has been supplied.
var ErrNotConfigured = errors.New("Todoist client not configured")

// RemoteError is returned when the API answers with a non-2xx status.
// Body is the raw response body, uninterpreted.
type RemoteError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("todoist %s: %s %s returned %d", e.Op, e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("todoist %s: %s %s returned %d: %s", e.Op, e.Method, e.Path, e.StatusCode, e.Body)
}

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("todoist %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or unusable client configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NotConfigured returns the error handed out while no client is installed.
func NotConfigured() error {
	return &ConfigurationError{Err: ErrNotConfigured}
}

// ValidationError is returned before any request is sent when an argument
// cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StatusCode returns the HTTP status of a RemoteError anywhere in err's
// chain, or 0.
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected the token.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// IsValidation reports whether err was raised by client-side validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotConfigured reports whether err means no token was supplied.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
