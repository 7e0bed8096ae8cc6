// Package auth decides who the current shopper is. The operator account is
// recognised locally; everyone else is delegated to the identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/identity"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
	"github.com/google/uuid"
)

const (
	AdminUID         = "admin-uid"
	AdminDisplayName = "Admin"

	keySession     = "catrink:session:%s"
	minPasswordLen = 6
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAdminPassword    = errors.New("admin password is managed by configuration")
)

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Admin       bool   `json:"admin"`
}

type Session struct {
	ID       string    `json:"id"`
	State    State     `json:"state"`
	Identity *Identity `json:"identity,omitempty"`

	// provider credential, kept server side only
	IDToken string `json:"id_token,omitempty"`
}

func (s Session) IsAdmin() bool {
	return s.State == StateAuthenticated && s.Identity != nil && s.Identity.Admin
}

func anonymous(id string) Session { return Session{ID: id, State: StateAnonymous} }

type Gate struct {
	admin    AdminVerifier
	provider identity.Provider
	sessions kv.Store
	ttl      time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	nextSub   int
	listeners map[int]func(Session)
}

func NewGate(admin AdminVerifier, provider identity.Provider, sessions kv.Store, ttl time.Duration) *Gate {
	return &Gate{
		admin:     admin,
		provider:  provider,
		sessions:  sessions,
		ttl:       ttl,
		log:       slog.Default().With("component", "auth"),
		listeners: map[int]func(Session){},
	}
}

// Login checks the operator pair first and never contacts the provider for
// it. Any other pair goes to the provider; its rejection is returned wrapped
// (see identity.AsProviderError).
func (g *Gate) Login(ctx context.Context, email, password string) (Session, error) {
	if g.admin.Verify(email, password) {
		return g.start(ctx, &Identity{UID: AdminUID, Email: email, DisplayName: AdminDisplayName, Admin: true}, "")
	}
	acct, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return g.start(ctx, fromAccount(acct), acct.IDToken)
}

func (g *Gate) Signup(ctx context.Context, email, password string) (Session, error) {
	acct, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return Session{}, fmt.Errorf("signup: %w", err)
	}
	return g.start(ctx, fromAccount(acct), acct.IDToken)
}

// Logout always ends in the anonymous state; provider sign-out failures are
// only logged.
func (g *Gate) Logout(ctx context.Context, sessionID string) Session {
	s := g.Current(ctx, sessionID)
	if s.State == StateAuthenticated && !s.Identity.Admin {
		acct := identity.Account{UID: s.Identity.UID, Email: s.Identity.Email, IDToken: s.IDToken}
		if err := g.provider.SignOut(ctx, acct); err != nil {
			g.log.Warn("provider sign-out", "uid", acct.UID, "err", err)
		}
	}
	if err := g.sessions.Delete(ctx, fmt.Sprintf(keySession, sessionID)); err != nil {
		g.log.Warn("drop session", "err", err)
	}
	out := anonymous(sessionID)
	g.publish(out)
	return out
}

// Current returns the session, or an anonymous one when unknown or expired.
func (g *Gate) Current(ctx context.Context, sessionID string) Session {
	if sessionID == "" {
		return anonymous("")
	}
	var s Session
	if err := kv.GetJSON(ctx, g.sessions, fmt.Sprintf(keySession, sessionID), &s); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			g.log.Warn("load session", "err", err)
		}
		return anonymous(sessionID)
	}
	return s
}

// Subscribe registers fn for auth state changes; call the returned func to
// stop receiving them.
func (g *Gate) Subscribe(fn func(Session)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// ChangePassword re-authenticates with current before asking the provider
// to set newPassword.
func (g *Gate) ChangePassword(ctx context.Context, sessionID, current, newPassword, confirm string) error {
	s := g.Current(ctx, sessionID)
	if s.State != StateAuthenticated {
		return ErrNotAuthenticated
	}
	if s.Identity.Admin {
		return ErrAdminPassword
	}
	if newPassword != confirm {
		return validation.New("confirm", "New passwords don't match")
	}
	if len(newPassword) < minPasswordLen {
		return validation.New("new", "Password must be at least 6 characters long")
	}

	acct, err := g.provider.SignIn(ctx, s.Identity.Email, current)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if err := g.provider.UpdatePassword(ctx, acct, newPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (g *Gate) start(ctx context.Context, id *Identity, idToken string) (Session, error) {
	s := Session{ID: uuid.NewString(), State: StateAuthenticated, Identity: id, IDToken: idToken}
	if err := kv.SetJSON(ctx, g.sessions, fmt.Sprintf(keySession, s.ID), s, g.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	g.publish(s)
	return s, nil
}

func (g *Gate) publish(s Session) {
	g.mu.Lock()
	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, g.listeners[id])
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func fromAccount(a identity.Account) *Identity {
	return &Identity{UID: a.UID, Email: a.Email, DisplayName: a.DisplayName}
}
