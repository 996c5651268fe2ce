package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized means an authenticated call was rejected with 401; the
	// session holding the token must end.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials means login was refused.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated means an authenticated call was attempted without a
	// session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError is input rejected locally, before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RequestError is a non-2xx backend response. Message is the backend's
// detail when it sent one, otherwise a per-operation fallback. Err, when set,
// classifies the failure (ErrUnauthorized, ErrInvalidCredentials).
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

// Message extracts the text to show a user for err: the backend detail or
// local validation reason verbatim, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

// Operation names, also used as log attributes.
const (
	OpLogin       = "login"
	OpListKeys    = "list-keys"
	OpCreateKey   = "create-key"
	OpUpdateKey   = "update-key"
	OpDeleteKey   = "delete-key"
	OpUsage       = "usage"
	OpRequestCode = "request-code"
	OpVerifyCode  = "verify-code"
	OpMyKeys      = "my-keys"
	OpHealth      = "health"
)

var fallbackMessages = map[string]string{
	OpLogin:       "Invalid credentials",
	OpListKeys:    "Failed to load API keys",
	OpCreateKey:   "Failed to create API key",
	OpUpdateKey:   "Failed to update API key",
	OpDeleteKey:   "Failed to delete API key",
	OpUsage:       "Failed to load usage stats",
	OpRequestCode: "Failed to send verification code",
	OpVerifyCode:  "Verification failed",
	OpMyKeys:      "Failed to load API keys",
	OpHealth:      "Health check failed",
}

// statusError classifies a non-2xx response of op. authenticated marks calls
// that carried a bearer token; only those escalate 401 to ErrUnauthorized.
func statusError(op string, status int, detail string, authenticated bool) *RequestError {
	e := &RequestError{Op: op, StatusCode: status, Message: detail}

	switch {
	case op == OpLogin:
		// login never leaks why it failed
		e.Message = fallbackMessages[OpLogin]
		e.Err = ErrInvalidCredentials
	case authenticated && status == http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	}

	if e.Message == "" {
		e.Message = fallbackMessages[op]
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("%s failed: %s", op, http.StatusText(status))
	}
	return e
}
