package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminVerifier decides whether a credential pair is the operator account.
type AdminVerifier interface {
	Verify(email, password string) bool
}

// BcryptAdmin matches one configured email against a bcrypt hash.
type BcryptAdmin struct {
	Email string
	Hash  []byte
}

func NewBcryptAdmin(email, hash string) *BcryptAdmin {
	return &BcryptAdmin{Email: email, Hash: []byte(hash)}
}

func (a *BcryptAdmin) Verify(email, password string) bool {
	if a == nil || a.Email == "" || subtle.ConstantTimeCompare([]byte(email), []byte(a.Email)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.Hash, []byte(password)) == nil
}
