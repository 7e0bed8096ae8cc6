// Package validation carries user-input rejections across package
// boundaries so the HTTP edge can tell them apart from infrastructure
// failures.
package validation

import "errors"

type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func New(field, msg string) error { return &Error{Field: field, Message: msg} }

// IsValidation helps callers distinguish between business and infrastructure failures.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// As returns the validation error wrapped in err, if any.
func As(err error) (*Error, bool) {
	var ve *Error
	ok := errors.As(err, &ve)
	return ve, ok
}
