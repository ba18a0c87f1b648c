package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-salon-bookings/internal/booking"
	"github.com/imrishuroy/go-salon-bookings/internal/cart"
)

var (
	ErrItemNotInCart = errors.New("item is not in the cart")
	ErrNoCheckout    = errors.New("no checkout is open for this session")
)

// CartKeyPrefix namespaces cart snapshots in Storage.
const CartKeyPrefix = "cart:"

// DefaultIdleTimeout is how long an untouched session stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

// processLocal is implemented by storage that lives only in this process.
// Carts over such storage are cached; carts over shared storage are rebuilt
// from the stored snapshot on every call so other instances' writes are seen.
type processLocal interface {
	ProcessLocal() bool
}

type session struct {
	cart     *cart.Store
	wizard   *booking.Wizard
	lastUsed time.Time
}

// Manager owns the cart and the open booking wizard of every session.
// A session has at most one open wizard; opening another closes the first.
// Sessions idle for longer than the idle timeout are dropped; their carts
// reload from storage on next use.
type Manager struct {
	mu          sync.Mutex
	storage     cart.Storage
	cacheCarts  bool
	submitter   booking.Submitter
	nowFunc     func() time.Time
	logger      *zap.Logger
	idleTimeout time.Duration
	lastSweep   time.Time

	sessions map[string]*session
}

// NewManager returns a Manager persisting carts to storage and handing
// completed bookings to submitter. A nil now uses time.Now.
func NewManager(storage cart.Storage, submitter booking.Submitter, now func() time.Time, logger *zap.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	local, ok := storage.(processLocal)
	return &Manager{
		storage:     storage,
		cacheCarts:  ok && local.ProcessLocal(),
		submitter:   submitter,
		nowFunc:     now,
		logger:      logger,
		idleTimeout: DefaultIdleTimeout,
		lastSweep:   now(),
		sessions:    map[string]*session{},
	}
}

// WithIdleTimeout overrides DefaultIdleTimeout. d <= 0 keeps the default.
func (m *Manager) WithIdleTimeout(d time.Duration) *Manager {
	if d > 0 {
		m.mu.Lock()
		m.idleTimeout = d
		m.mu.Unlock()
	}
	return m
}

// touch returns the session for sid, creating it, and evicts idle sessions.
// It must be called with mu held.
func (m *Manager) touch(sid string) *session {
	now := m.nowFunc()
	if now.Sub(m.lastSweep) >= m.idleTimeout/4 {
		m.evictIdle(now)
	}
	s, ok := m.sessions[sid]
	if !ok {
		s = &session{}
		m.sessions[sid] = s
	}
	s.lastUsed = now
	return s
}

// evictIdle must be called with mu held.
func (m *Manager) evictIdle(now time.Time) {
	m.lastSweep = now
	for sid, s := range m.sessions {
		if now.Sub(s.lastUsed) < m.idleTimeout {
			continue
		}
		if s.wizard != nil {
			s.wizard.Close()
		}
		delete(m.sessions, sid)
		m.logger.Debug("session evicted", zap.String("session_id", sid))
	}
}

func (m *Manager) newCart(sid string) *cart.Store {
	return cart.NewStore(m.storage, CartKeyPrefix+sid, m.logger.With(zap.String("session_id", sid)))
}

// Cart returns the session's cart loaded from storage. Over process-local
// storage the same Store is returned until the session is evicted.
func (m *Manager) Cart(ctx context.Context, sid string) *cart.Store {
	m.mu.Lock()
	s := m.touch(sid)
	c := s.cart
	if c == nil {
		c = m.newCart(sid)
		if m.cacheCarts {
			s.cart = c
		}
	}
	m.mu.Unlock()

	c.Load(ctx)
	return c
}

// Open starts a booking for the cart line itemID at its current quantity.
// The wizard works on a copy of the line.
func (m *Manager) Open(ctx context.Context, sid, itemID string) (*booking.Wizard, error) {
	item, ok := m.Cart(ctx, sid).Item(itemID)
	if !ok {
		return nil, ErrItemNotInCart
	}

	w := booking.Open(item, item.Quantity, m.nowFunc(), m.submitter, m.logger.With(zap.String("session_id", sid)))

	m.mu.Lock()
	s := m.touch(sid)
	prev := s.wizard
	s.wizard = w
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return w, nil
}

// Wizard returns the session's open wizard.
func (m *Manager) Wizard(sid string) (*booking.Wizard, error) {
	m.mu.Lock()
	var w *booking.Wizard
	if s, ok := m.sessions[sid]; ok && s.wizard != nil {
		s.lastUsed = m.nowFunc()
		w = s.wizard
	}
	m.mu.Unlock()
	if w == nil || w.Closed() {
		return nil, ErrNoCheckout
	}
	return w, nil
}

// Close discards the session's wizard and its draft. The cart is untouched.
func (m *Manager) Close(sid string) {
	m.mu.Lock()
	var w *booking.Wizard
	if s, ok := m.sessions[sid]; ok {
		w = s.wizard
		s.wizard = nil
	}
	m.mu.Unlock()

	if w != nil {
		w.Close()
	}
}

// Submit submits the session's wizard and releases it once accepted.
func (m *Manager) Submit(ctx context.Context, sid string) (*booking.Confirmation, error) {
	w, err := m.Wizard(sid)
	if err != nil {
		return nil, err
	}
	conf, err := w.Submit(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if s, ok := m.sessions[sid]; ok && s.wizard == w {
		s.wizard = nil
	}
	m.mu.Unlock()
	return conf, nil
}
