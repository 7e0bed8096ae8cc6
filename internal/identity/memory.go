package identity

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type memAccount struct {
	uid  string
	name string
	hash []byte
}

// Memory is an in-process provider for development and tests.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]*memAccount
	cost    int
}

func NewMemory() *Memory {
	return &Memory{byEmail: map[string]*memAccount{}, cost: bcrypt.MinCost}
}

func (m *Memory) SignIn(_ context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.RLock()
	a, ok := m.byEmail[email]
	m.mu.RUnlock()
	if !ok {
		return Account{}, &ProviderError{Code: CodeEmailNotFound}
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return Account{}, &ProviderError{Code: CodeInvalidPassword}
	}
	return Account{UID: a.uid, Email: email, DisplayName: a.name}, nil
}

func (m *Memory) SignUp(_ context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Account{}, &ProviderError{Code: CodeInvalidEmail}
	}
	if len(password) < minPasswordLen {
		return Account{}, &ProviderError{Code: CodeWeakPassword, Message: "Password should be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return Account{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return Account{}, &ProviderError{Code: CodeEmailExists}
	}
	a := &memAccount{uid: uuid.NewString(), hash: hash}
	m.byEmail[email] = a
	return Account{UID: a.uid, Email: email}, nil
}

func (m *Memory) SignOut(context.Context, Account) error { return nil }

func (m *Memory) UpdatePassword(_ context.Context, acct Account, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return &ProviderError{Code: CodeWeakPassword, Message: "Password should be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), m.cost)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[strings.ToLower(acct.Email)]
	if !ok || a.uid != acct.UID {
		return &ProviderError{Code: CodeUserNotFound}
	}
	a.hash = hash
	return nil
}
