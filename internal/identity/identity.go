// Package identity is the external identity provider boundary. Regular
// (non-admin) shoppers are authenticated here.
package identity

import (
	"context"
	"errors"
	"fmt"
)

type Account struct {
	UID         string
	Email       string
	DisplayName string
	IDToken     string // provider credential for follow-up calls, may be empty
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (Account, error)
	SignUp(ctx context.Context, email, password string) (Account, error)
	SignOut(ctx context.Context, acct Account) error
	UpdatePassword(ctx context.Context, acct Account, newPassword string) error
}

var (
	_ Provider = (*Firebase)(nil)
	_ Provider = (*Memory)(nil)
)

// Provider error codes, matching the Identity Toolkit vocabulary.
const (
	CodeEmailNotFound   = "EMAIL_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeInvalidLogin    = "INVALID_LOGIN_CREDENTIALS"
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeWeakPassword    = "WEAK_PASSWORD"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeUserNotFound    = "USER_NOT_FOUND"
)

// ProviderError is a rejection reported by the provider itself, as opposed
// to a transport failure.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" || e.Message == e.Code {
		return "identity: " + e.Code
	}
	return fmt.Sprintf("identity: %s: %s", e.Code, e.Message)
}

// AsProviderError unwraps err to a *ProviderError.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}
