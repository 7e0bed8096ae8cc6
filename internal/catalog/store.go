package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/catrink-storefront/internal/kv"
	"github.com/google/uuid"
)

const (
	keyProducts = "catrink:products"
	keyFlavors  = "catrink:flavors"
)

var (
	ErrNotFound = errors.New("catalog: not found")
	ErrInvalid  = errors.New("catalog: invalid record")
)

// Store owns the product and flavor lists. Every mutation rewrites the list
// under one key through kv.UpdateJSON.
type Store struct {
	kv    kv.Store
	newID func() string
}

func NewStore(s kv.Store) *Store {
	return &Store{kv: s, newID: uuid.NewString}
}

// Seed installs the default line-up when a list has never been written.
func (s *Store) Seed(ctx context.Context) error {
	if err := seed(ctx, s.kv, keyProducts, DefaultProducts()); err != nil {
		return err
	}
	return seed(ctx, s.kv, keyFlavors, DefaultFlavors())
}

func seed[T any](ctx context.Context, store kv.Store, key string, def []T) error {
	return kv.UpdateJSON(ctx, store, key, func(cur []T) ([]T, error) {
		if cur == nil {
			return def, nil
		}
		return cur, nil
	})
}

func list[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	var out []T
	err := kv.GetJSON(ctx, store, key, &out)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	return out, err
}

func validateProduct(p Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name required", ErrInvalid)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", ErrInvalid)
	case !p.Energy.Valid():
		return fmt.Errorf("%w: unknown energy tier %q", ErrInvalid, p.Energy)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: rating must be within 0..5", ErrInvalid)
	case p.Reviews < 0:
		return fmt.Errorf("%w: reviews must be >= 0", ErrInvalid)
	}
	return nil
}

func validateFlavor(f Flavor) error {
	switch {
	case f.Name == "":
		return fmt.Errorf("%w: name required", ErrInvalid)
	case f.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0", ErrInvalid)
	case !f.EnergyLevel.Valid():
		return fmt.Errorf("%w: unknown energy tier %q", ErrInvalid, f.EnergyLevel)
	case f.Rating < 0 || f.Rating > 5:
		return fmt.Errorf("%w: rating must be within 0..5", ErrInvalid)
	}
	return nil
}

// ---- products ----

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, s.kv, keyProducts)
}

func (s *Store) GetProduct(ctx context.Context, id string) (Product, error) {
	ps, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// AddProduct assigns a fresh id; any id on p is ignored.
func (s *Store) AddProduct(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	p.ID = s.newID()
	err := kv.UpdateJSON(ctx, s.kv, keyProducts, func(cur []Product) ([]Product, error) {
		return append(cur, p), nil
	})
	return p, err
}

func (s *Store) UpdateProduct(ctx context.Context, id string, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	p.ID = id
	err := kv.UpdateJSON(ctx, s.kv, keyProducts, func(cur []Product) ([]Product, error) {
		for i := range cur {
			if cur[i].ID == id {
				cur[i] = p
				return cur, nil
			}
		}
		return nil, ErrNotFound
	})
	return p, err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return kv.UpdateJSON(ctx, s.kv, keyProducts, func(cur []Product) ([]Product, error) {
		for i := range cur {
			if cur[i].ID == id {
				return append(cur[:i], cur[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

// ---- flavors ----

func (s *Store) ListFlavors(ctx context.Context) ([]Flavor, error) {
	return list[Flavor](ctx, s.kv, keyFlavors)
}

func (s *Store) AddFlavor(ctx context.Context, f Flavor) (Flavor, error) {
	if err := validateFlavor(f); err != nil {
		return Flavor{}, err
	}
	f.ID = s.newID()
	err := kv.UpdateJSON(ctx, s.kv, keyFlavors, func(cur []Flavor) ([]Flavor, error) {
		return append(cur, f), nil
	})
	return f, err
}

func (s *Store) UpdateFlavor(ctx context.Context, id string, f Flavor) (Flavor, error) {
	if err := validateFlavor(f); err != nil {
		return Flavor{}, err
	}
	f.ID = id
	err := kv.UpdateJSON(ctx, s.kv, keyFlavors, func(cur []Flavor) ([]Flavor, error) {
		for i := range cur {
			if cur[i].ID == id {
				cur[i] = f
				return cur, nil
			}
		}
		return nil, ErrNotFound
	})
	return f, err
}

func (s *Store) DeleteFlavor(ctx context.Context, id string) error {
	return kv.UpdateJSON(ctx, s.kv, keyFlavors, func(cur []Flavor) ([]Flavor, error) {
		for i := range cur {
			if cur[i].ID == id {
				return append(cur[:i], cur[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}
