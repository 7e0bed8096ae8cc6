package orders

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Store persists placed orders. Add keeps the caller's TrackingID and
// assigns the internal ID; List is newest first.
type Store interface {
	Add(ctx context.Context, o Order) (string, error)
	Get(ctx context.Context, id string) (Order, error)
	GetByTrackingID(ctx context.Context, trackingID string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, s Status) (Order, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*Repo)(nil)
)

type MemoryStore struct {
	mu     sync.RWMutex
	orders []Order // newest first
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Add(_ context.Context, o Order) (string, error) {
	if o.TrackingID == "" {
		o.TrackingID = GenerateTrackingID()
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusProcessing
	}
	m.mu.Lock()
	m.orders = append([]Order{o.clone()}, m.orders...)
	m.mu.Unlock()
	return o.TrackingID, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o.clone(), nil
		}
	}
	return Order{}, ErrNotFound
}

// GetByTrackingID returns the newest order with trackingID; ids are random
// and never checked for uniqueness.
func (m *MemoryStore) GetByTrackingID(_ context.Context, trackingID string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.TrackingID == trackingID {
			return o.clone(), nil
		}
	}
	return Order{}, ErrNotFound
}

func (m *MemoryStore) List(_ context.Context) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.clone())
	}
	return out, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id string, s Status) (Order, error) {
	if !s.Valid() {
		return Order{}, ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = s
			return m.orders[i].clone(), nil
		}
	}
	return Order{}, ErrNotFound
}
