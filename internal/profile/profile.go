package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/ariefcatur/catrink-storefront/internal/validation"
)

const (
	keyProfile       = "catrink_profile_%s"
	adminDefaultName = "Admin User"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Preferences struct {
	Newsletter   bool `json:"newsletter"`
	Promotions   bool `json:"promotions"`
	OrderUpdates bool `json:"orderUpdates"`
}

type Profile struct {
	FullName    string      `json:"fullName"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	DateOfBirth string      `json:"dateOfBirth"`
	Gender      string      `json:"gender"`
	Address     Address     `json:"address"`
	Preferences Preferences `json:"preferences"`
	Bio         string      `json:"bio"`
}

// Owner is whoever the profile belongs to.
type Owner struct {
	Email       string
	DisplayName string
	Admin       bool
}

type Store struct {
	kv kv.Store
}

func NewStore(s kv.Store) *Store { return &Store{kv: s} }

func Defaults(o Owner) Profile {
	name := o.DisplayName
	if o.Admin {
		name = adminDefaultName
	}
	return Profile{
		FullName:    name,
		Email:       o.Email,
		Preferences: Preferences{Newsletter: true, Promotions: true, OrderUpdates: true},
	}
}

// Load returns the saved profile laid over the owner's defaults.
func (s *Store) Load(ctx context.Context, o Owner) (Profile, error) {
	p := Defaults(o)
	if o.Email == "" {
		return p, nil
	}
	err := kv.GetJSON(ctx, s.kv, key(o.Email), &p)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Defaults(o), err
	}
	return p, nil
}

// Save stores p under the owner's email; the email on p is not trusted.
func (s *Store) Save(ctx context.Context, o Owner, p Profile) (Profile, error) {
	if o.Email == "" {
		return Profile{}, validation.New("email", "profile needs a signed-in user")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return Profile{}, validation.New("fullName", "full name is required")
	}
	p.Email = o.Email
	if err := kv.SetJSON(ctx, s.kv, key(o.Email), p, 0); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func key(email string) string { return fmt.Sprintf(keyProfile, email) }
