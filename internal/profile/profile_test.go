package profile

import (
	"context"
	"testing"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s := NewStore(kv.NewMemory())

	p, err := s.Load(context.Background(), Owner{Email: "admin@catrink.in", DisplayName: "Admin", Admin: true})
	require.NoError(t, err)
	assert.Equal(t, "Admin User", p.FullName)
	assert.True(t, p.Preferences.Newsletter)

	p, err = s.Load(context.Background(), Owner{Email: "nia@x.io", DisplayName: "Nia"})
	require.NoError(t, err)
	assert.Equal(t, "Nia", p.FullName)
	assert.Equal(t, "nia@x.io", p.Email)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewStore(mem)
	o := Owner{Email: "nia@x.io"}

	saved, err := s.Save(ctx, o, Profile{
		FullName: "Nia Kurnia",
		Email:    "spoofed@x.io",
		Phone:    "+62 811",
		Address:  Address{City: "Bandung"},
	})
	require.NoError(t, err)
	assert.Equal(t, "nia@x.io", saved.Email)

	got, err := s.Load(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, "Nia Kurnia", got.FullName)
	assert.Equal(t, "Bandung", got.Address.City)
	assert.False(t, got.Preferences.Newsletter, "saved preferences win over defaults")

	_, err = mem.Get(ctx, "catrink_profile_nia@x.io")
	require.NoError(t, err)
}

func TestSaveValidation(t *testing.T) {
	s := NewStore(kv.NewMemory())
	_, err := s.Save(context.Background(), Owner{}, Profile{FullName: "x"})
	assert.True(t, validation.IsValidation(err))
	_, err = s.Save(context.Background(), Owner{Email: "a@x.io"}, Profile{FullName: "  "})
	assert.True(t, validation.IsValidation(err))
}
