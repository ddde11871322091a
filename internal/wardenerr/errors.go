// Package wardenerr defines the typed error kinds surfaced across warden's
// subsystems, so callers can branch on failure category with errors.As
// instead of matching on message text.
package wardenerr

import "fmt"

// Kind identifies the category of a warden error, per the recovery policy
// in spec.md §7.
type Kind string

const (
	ConfigInvalid          Kind = "ConfigInvalid"
	ProviderUnknown         Kind = "ProviderUnknown"
	FlowUnsupported         Kind = "FlowUnsupported"
	FlowTimeout             Kind = "FlowTimeout"
	StateMismatch           Kind = "StateMismatch"
	AuthorizationDenied     Kind = "AuthorizationDenied"
	ProviderHTTP            Kind = "ProviderHTTP"
	MalformedTokenResponse  Kind = "MalformedTokenResponse"
	BindFailed              Kind = "BindFailed"
	KeyringUnavailable      Kind = "KeyringUnavailable"
	RepoDetectionFailed     Kind = "RepoDetectionFailed"
	NoMatchingRule          Kind = "NoMatchingRule"
	ProfileUnknown          Kind = "ProfileUnknown"
	GitConfigWriteFailed    Kind = "GitConfigWriteFailed"
)

// Error is the common error type for all warden subsystems. It carries a
// Kind for programmatic dispatch plus an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // set for Kind == ProviderHTTP
	Body    string // trimmed response body, set for Kind == ProviderHTTP
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, wardenerr.New(kind, "")) to match purely on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error with the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// HTTP builds a ProviderHTTP error carrying the response status and a
// trimmed body for operator diagnosis, per spec.md §7.
func HTTP(status int, body string) *Error {
	const maxBody = 2048
	if len(body) > maxBody {
		body = body[:maxBody] + "...(truncated)"
	}
	return &Error{
		Kind:    ProviderHTTP,
		Message: fmt.Sprintf("provider returned HTTP %d", status),
		Status:  status,
		Body:    body,
	}
}

// KindOf returns the Kind of err if it (or something it wraps) is a
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
