package fitdata

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrConfiguration       = errors.New("configuration error")
	ErrAuth                = errors.New("authorization failed")
	ErrNoData              = errors.New("no data available")
	ErrUnknown             = errors.New("unknown failure")
)

// Error is a failed session operation. Message is what the dashboard shows
// and is never empty.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, message string, cause error) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

// messageOr returns the cause's text, or fallback when there is none
func messageOr(cause error, fallback string) string {
	if cause == nil || cause.Error() == "" {
		return fallback
	}
	return cause.Error()
}
