package restconsumer

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one member of the closed failure taxonomy.
type Kind string

const (
	// KindRecoverable marks failures that are safe to retry.
	KindRecoverable Kind = "RECOVERABLE"

	// KindUnrecoverable marks failures that must not be retried.
	KindUnrecoverable Kind = "UNRECOVERABLE"

	// KindInvalidCredentials marks a rejected authentication. It is an
	// unrecoverable failure.
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"

	// KindInvalidOptions marks malformed call-site usage. It is an
	// unrecoverable failure.
	KindInvalidOptions Kind = "INVALID_OPTIONS"

	// KindPassThrough marks a transport failure that no classification rule
	// covered. It is surfaced verbatim as an [*HTTPError].
	KindPassThrough Kind = "PASS_THROUGH"
)

// parent returns the kind this kind specialises, or "" for top-level kinds.
func (k Kind) parent() Kind {
	switch k {
	case KindInvalidCredentials, KindInvalidOptions:
		return KindUnrecoverable
	default:
		return ""
	}
}

// IsA reports whether k is target or a specialisation of it.
func (k Kind) IsA(target Kind) bool {
	for cur := k; cur != ""; cur = cur.parent() {
		if cur == target {
			return true
		}
	}
	return false
}

// Sentinels for errors.Is. Matching is subtype aware, so an invalid
// credentials failure also matches ErrUnrecoverable. Pass-through failures
// have no sentinel; test them with KindOf or errors.As on *HTTPError.
var (
	ErrRecoverable        = &Failure{kind: KindRecoverable, message: "recoverable failure", sentinel: true}
	ErrUnrecoverable      = &Failure{kind: KindUnrecoverable, message: "unrecoverable failure", sentinel: true}
	ErrInvalidCredentials = &Failure{kind: KindInvalidCredentials, message: "invalid credentials", sentinel: true}
	ErrInvalidOptions     = &Failure{kind: KindInvalidOptions, message: "invalid options", sentinel: true}
)

// Failure is a classified error.
type Failure struct {
	kind     Kind
	message  string
	cause    error
	sentinel bool
}

// NewFailure creates a Failure of the given kind.
func NewFailure(kind Kind, format string, args ...any) *Failure {
	return &Failure{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WrapFailure classifies cause as kind. The message of cause is kept so the
// caller sees the original text.
func WrapFailure(kind Kind, cause error) *Failure {
	return &Failure{kind: kind, message: cause.Error(), cause: cause}
}

func invalidOptions(cause error, format string, args ...any) *Failure {
	return &Failure{
		kind:    KindInvalidOptions,
		message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func (f *Failure) Error() string {
	return f.message
}

// Kind returns the failure kind.
func (f *Failure) Kind() Kind {
	return f.kind
}

// Unwrap returns the classified cause, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// Is matches the package sentinels by kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok || !t.sentinel {
		return false
	}
	return f.kind.IsA(t.kind)
}

// HTTPError is the status-carrying failure produced for a non-2xx response.
// When no status rule classifies it, it reaches the caller unchanged.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

func (e *HTTPError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "Unknown"
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, text)
}

// Kind returns KindPassThrough.
func (e *HTTPError) Kind() Kind {
	return KindPassThrough
}

// KindOf returns the kind of the first classified error in err's chain, or ""
// when err carries no kind.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
