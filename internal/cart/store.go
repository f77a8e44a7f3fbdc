package cart

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the authoritative cart for one shopper. Mutations are written
// through to Storage; storage failures never surface to callers.
type Store struct {
	mu      sync.RWMutex
	lines   []Line
	open    bool
	storage Storage
	log     *zap.Logger
}

// NewStore adopts whatever valid cart is already persisted in storage.
// Missing or corrupt payloads start an empty cart.
func NewStore(storage Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{storage: storage, log: log.With(zap.String("component", "cart"))}
	s.lines = s.restore()
	return s
}

func (s *Store) restore() []Line {
	raw, err := s.storage.Load(StorageKey)
	if err != nil {
		return nil
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.log.Debug("discarding unreadable cart", zap.Error(err))
		return nil
	}

	clean := make([]Line, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if l.ID == "" || seen[l.ID] {
			continue
		}
		if l.Qty < 1 {
			l.Qty = 1
		}
		seen[l.ID] = true
		clean = append(clean, l)
	}
	return clean
}

// Add merges qty into the line with the same ID, or appends it. A qty
// below 1 counts as 1. Adding always opens the cart panel.
func (s *Store) Add(line Line, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = true
	if i := s.indexOf(line.ID); i >= 0 {
		s.lines[i].Qty += qty
	} else {
		line.Qty = qty
		s.lines = append(s.lines, line)
	}
	s.persist()
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist()
}

// ChangeQty replaces the quantity, floored at 1. Remove is the only way to
// drop a line.
func (s *Store) ChangeQty(id string, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines[i].Qty = qty
	s.persist()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist()
}

// Total is recomputed from the lines on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Qty
	}
	return n
}

func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

func (s *Store) Open() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

func (s *Store) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

func (s *Store) indexOf(id string) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with s.mu held.
func (s *Store) persist() {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		s.log.Debug("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Save(StorageKey, raw); err != nil {
		s.log.Debug("failed to persist cart", zap.Error(err))
	}
}
