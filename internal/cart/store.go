package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Store holds the line items of one session and writes the full item list to
// Storage after every mutation. Storage failures are logged and never
// surface to callers: the in-memory state stays authoritative.
type Store struct {
	mu      sync.Mutex
	storage Storage
	key     string
	logger  *zap.Logger
	items   []LineItem
	loaded  bool
}

// NewStore returns an empty Store persisting under key.
func NewStore(storage Storage, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		storage: storage,
		key:     key,
		logger:  logger.With(zap.String("cart_key", key)),
	}
}

// Load rehydrates the cart by replaying the stored snapshot through the add
// path. Only the first call reads storage; later calls are no-ops.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}
	s.loaded = true

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("cart snapshot read failed, starting empty", zap.Error(err))
		return
	}
	if !found || raw == "" {
		return
	}

	var stored []LineItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("cart snapshot is corrupt, starting empty", zap.Error(err))
		return
	}
	for _, it := range stored {
		if it.ID == "" || it.Quantity <= 0 {
			s.logger.Warn("skipping invalid stored line", zap.String("id", it.ID), zap.Int("quantity", it.Quantity))
			continue
		}
		s.add(it, it.Quantity)
	}
	s.logger.Debug("cart rehydrated", zap.Int("lines", len(s.items)))
}

// AddItem merges quantity into the line with item.ID, or appends a new line.
// A merge only changes the quantity; the originally stored name and price are
// kept. quantity < 1 counts as 1.
func (s *Store) AddItem(ctx context.Context, item LineItem, quantity int) {
	if item.ID == "" {
		s.logger.Warn("ignoring add of item without id")
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(item, quantity)
	s.persist(ctx)
}

// RemoveItem deletes the line with id. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persist(ctx)
}

// SetQuantity sets the line's quantity to max(0, quantity); a line driven to
// zero is removed. Unknown ids are ignored.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i >= 0 {
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
	}
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the lines in display order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns a copy of the line with id.
func (s *Store) Item(id string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// TotalItemCount is the sum of quantities, not the number of lines.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of price * quantity over all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

func (s *Store) add(item LineItem, quantity int) {
	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity += quantity
		return
	}
	item.Quantity = quantity
	s.items = append(s.items, item)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) {
	snapshot := s.items
	if snapshot == nil {
		snapshot = []LineItem{}
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("cart snapshot marshal failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, string(body)); err != nil {
		s.logger.Warn("cart snapshot write failed, continuing in memory", zap.Error(err))
	}
}
