package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/catrink-storefront/internal/identity"
	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@catrink.in"

// spyProvider wraps identity.Memory and counts calls.
type spyProvider struct {
	*identity.Memory
	signIns    int
	signOutErr error
}

func (s *spyProvider) SignIn(ctx context.Context, email, password string) (identity.Account, error) {
	s.signIns++
	return s.Memory.SignIn(ctx, email, password)
}

func (s *spyProvider) SignOut(context.Context, identity.Account) error { return s.signOutErr }

func newGate(t *testing.T) (*Gate, *spyProvider, *kv.Memory) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("S3cret!admin"), bcrypt.MinCost)
	require.NoError(t, err)
	p := &spyProvider{Memory: identity.NewMemory()}
	store := kv.NewMemory()
	return NewGate(NewBcryptAdmin(adminEmail, string(hash)), p, store, time.Hour), p, store
}

func TestLoginAdminSkipsProvider(t *testing.T) {
	g, p, _ := newGate(t)

	s, err := g.Login(context.Background(), adminEmail, "S3cret!admin")
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.Equal(t, AdminUID, s.Identity.UID)
	assert.Equal(t, AdminDisplayName, s.Identity.DisplayName)
	assert.Zero(t, p.signIns)
}

func TestLoginAdminEmailWrongPasswordDelegates(t *testing.T) {
	g, p, _ := newGate(t)

	_, err := g.Login(context.Background(), adminEmail, "guess")
	require.Error(t, err)
	assert.Equal(t, 1, p.signIns)
	pe, ok := identity.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, identity.CodeEmailNotFound, pe.Code)
}

func TestLoginRegularUser(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)

	signed, err := g.Signup(ctx, "nia@x.io", "meow123")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, signed.State)
	assert.False(t, signed.IsAdmin())

	s, err := g.Login(ctx, "nia@x.io", "meow123")
	require.NoError(t, err)
	assert.Equal(t, "nia@x.io", s.Identity.Email)
	assert.Equal(t, s, g.Current(ctx, s.ID))

	_, err = g.Login(ctx, "nia@x.io", "wrong1")
	pe, ok := identity.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, identity.CodeInvalidPassword, pe.Code)
}

func TestLogoutIsUnconditional(t *testing.T) {
	ctx := context.Background()
	g, p, _ := newGate(t)
	s, err := g.Signup(ctx, "nia@x.io", "meow123")
	require.NoError(t, err)

	p.signOutErr = errors.New("network down")
	out := g.Logout(ctx, s.ID)
	assert.Equal(t, StateAnonymous, out.State)
	assert.Equal(t, StateAnonymous, g.Current(ctx, s.ID).State)
}

func TestCurrentUnknownAndExpired(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	now := time.Now()
	store := kv.NewMemory().WithClock(func() time.Time { return now })
	g := NewGate(NewBcryptAdmin(adminEmail, string(hash)), identity.NewMemory(), store, time.Minute)

	assert.Equal(t, StateAnonymous, g.Current(ctx, "").State)
	assert.Equal(t, StateAnonymous, g.Current(ctx, "nope").State)

	s, err := g.Login(ctx, adminEmail, "pw")
	require.NoError(t, err)
	assert.True(t, g.Current(ctx, s.ID).IsAdmin())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, StateAnonymous, g.Current(ctx, s.ID).State)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)

	var seen []State
	unsub := g.Subscribe(func(s Session) { seen = append(seen, s.State) })

	s, err := g.Login(ctx, adminEmail, "S3cret!admin")
	require.NoError(t, err)
	g.Logout(ctx, s.ID)
	unsub()
	_, _ = g.Login(ctx, adminEmail, "S3cret!admin")

	assert.Equal(t, []State{StateAuthenticated, StateAnonymous}, seen)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGate(t)
	s, err := g.Signup(ctx, "nia@x.io", "meow123")
	require.NoError(t, err)

	tests := []struct {
		name                   string
		current, next, confirm string
		field                  string
	}{
		{"mismatch", "meow123", "purr4567", "purr4568", "confirm"},
		{"too short", "meow123", "abc", "abc", "new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ChangePassword(ctx, s.ID, tt.current, tt.next, tt.confirm)
			ve, ok := validation.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	err = g.ChangePassword(ctx, s.ID, "wrong1", "purr4567", "purr4567")
	_, ok := identity.AsProviderError(err)
	assert.True(t, ok)

	require.NoError(t, g.ChangePassword(ctx, s.ID, "meow123", "purr4567", "purr4567"))
	_, err = g.Login(ctx, "nia@x.io", "purr4567")
	require.NoError(t, err)

	require.ErrorIs(t, g.ChangePassword(ctx, "anon", "a", "bbbbbb", "bbbbbb"), ErrNotAuthenticated)

	admin, _ := g.Login(ctx, adminEmail, "S3cret!admin")
	require.ErrorIs(t, g.ChangePassword(ctx, admin.ID, "S3cret!admin", "bbbbbb", "bbbbbb"), ErrAdminPassword)
}
