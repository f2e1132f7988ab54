package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes application errors so the CLI can choose a remediation hint.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// ConfigMissing means a selected provider has no credential configured.
	ConfigMissing
	// Auth means the remote service rejected the credentials.
	Auth
	// Remote means a remote call failed or returned an unexpected status.
	Remote
	// NotFound means a remote or local resource does not exist.
	NotFound
	// Invalid means the input could not be used as given.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "config missing"
	case Auth:
		return "auth"
	case Remote:
		return "remote"
	case NotFound:
		return "not found"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind       Kind
	StatusCode int // HTTP status returned by the remote service, if any
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New returns an AppError without a cause.
func New(kind Kind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an AppError wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the Kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	return Unknown
}

// IsKind reports whether err's chain contains an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
