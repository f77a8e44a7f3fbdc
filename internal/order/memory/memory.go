// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"smarthome-be/internal/order"
)

// Repository provides an in-memory implementation of order.Repository.
// Ids start at 1 and are never reused, matching the Postgres sequence.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[string]order.Order
	now    func() time.Time
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[string]order.Order), now: time.Now}
}

// CreateOrder stores a copy of o under its derived number.
func (r *Repository) CreateOrder(ctx context.Context, o *order.Order, numberFor func(int64) string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	o.ID = r.nextID
	o.Number = numberFor(o.ID)
	o.CreatedAt = r.now()

	stored := *o
	stored.Items = append([]order.Item(nil), o.Items...)
	r.orders[o.Number] = stored
	return nil
}

// GetOrderByNumber returns order.ErrOrderNotFound for unknown numbers.
func (r *Repository) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[number]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Items = append([]order.Item(nil), o.Items...)
	return &o, nil
}

// ListOrders returns the newest orders first.
func (r *Repository) ListOrders(ctx context.Context, limit int) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
