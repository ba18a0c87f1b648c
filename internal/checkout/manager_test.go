package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-salon-bookings/internal/booking"
	"github.com/imrishuroy/go-salon-bookings/internal/cart"
	"github.com/imrishuroy/go-salon-bookings/internal/storage"
)

// 2026-10-17 is a Saturday.
func saturday() time.Time { return time.Date(2026, time.October, 17, 15, 30, 0, 0, time.UTC) }

var facial = cart.LineItem{ID: "svc-facial", Name: "Gold Facial", Slug: "gold-facial", Price: 500, Duration: "60 min", Category: "skin"}

func strp(s string) *string { return &s }

func salonLocation() *booking.ServiceLocation {
	l := booking.LocationSalon
	return &l
}

func fillToConfirm(t *testing.T, w *booking.Wizard) {
	t.Helper()
	require.NoError(t, w.Apply(booking.DraftPatch{SelectedDate: strp("2026-10-19"), SelectedTime: strp("10:00")}))
	require.True(t, w.Next())
	require.NoError(t, w.Apply(booking.DraftPatch{ServiceLocation: salonLocation()}))
	require.True(t, w.Next())
	require.NoError(t, w.Apply(booking.DraftPatch{FullName: strp("Asha Rao"), Phone: strp("9876543210"), Email: strp("asha@example.com")}))
	require.True(t, w.Next())
}

func acceptAll() booking.SubmitterFunc {
	return func(ctx context.Context, key string, sub booking.Submission) (*booking.Confirmation, error) {
		return &booking.Confirmation{BookingID: "bk-" + sub.ServiceID, Status: "PENDING"}, nil
	}
}

func TestCart_LoadsFromStorageOnce(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, "cart:s1", `[{"id":"svc-facial","price":500,"quantity":2}]`))

	m := NewManager(mem, nil, saturday, nil)
	c := m.Cart(ctx, "s1")
	assert.Equal(t, 2, c.TotalItemCount())
	assert.Same(t, c, m.Cart(ctx, "s1"))
	assert.Equal(t, 0, m.Cart(ctx, "s2").TotalItemCount())
}

func TestOpen_SeedsFromCartLine(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), acceptAll(), saturday, nil)
	m.Cart(ctx, "s1").AddItem(ctx, facial, 3)

	w, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)
	assert.Equal(t, booking.StepDateTime, w.Step())

	fillToConfirm(t, w)
	assert.Equal(t, 1500.0, w.Summary().TotalPrice)
	assert.Equal(t, 3, w.Summary().Quantity)

	got, err := m.Wizard("s1")
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestOpen_ItemNotInCart(t *testing.T) {
	m := NewManager(storage.NewMemory(), nil, saturday, nil)

	_, err := m.Open(context.Background(), "s1", "svc-missing")
	assert.ErrorIs(t, err, ErrItemNotInCart)

	_, err = m.Wizard("s1")
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestOpen_ReplacesPreviousWizard(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), nil, saturday, nil)
	m.Cart(ctx, "s1").AddItem(ctx, facial, 1)

	first, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)
	second, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)

	assert.True(t, first.Closed())
	assert.NotEqual(t, first.IdempotencyKey(), second.IdempotencyKey())
}

func TestClose_LeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	m := NewManager(mem, nil, saturday, nil)
	c := m.Cart(ctx, "s1")
	c.AddItem(ctx, facial, 2)
	before := c.Items()
	snapshot, _, _ := mem.Get(ctx, "cart:s1")

	w, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)
	require.NoError(t, w.Apply(booking.DraftPatch{SelectedDate: strp("2026-10-19"), SelectedTime: strp("10:00")}))
	require.True(t, w.Next())
	require.NoError(t, w.Apply(booking.DraftPatch{ServiceLocation: salonLocation()}))
	require.True(t, w.Next())
	require.Equal(t, booking.StepDetails, w.Step())

	m.Close("s1")

	assert.True(t, w.Closed())
	assert.Equal(t, booking.Draft{}, w.Draft())
	assert.Equal(t, before, c.Items())
	after, _, _ := mem.Get(ctx, "cart:s1")
	assert.Equal(t, snapshot, after)

	_, err = m.Wizard("s1")
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestSubmit_ReleasesWizard(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemory(), acceptAll(), saturday, nil)
	m.Cart(ctx, "s1").AddItem(ctx, facial, 1)

	w, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)
	fillToConfirm(t, w)

	conf, err := m.Submit(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "bk-svc-facial", conf.BookingID)

	_, err = m.Wizard("s1")
	assert.ErrorIs(t, err, ErrNoCheckout)
	assert.Equal(t, 1, m.Cart(ctx, "s1").TotalItemCount())
}

func TestSubmit_FailureKeepsWizardOpen(t *testing.T) {
	ctx := context.Background()
	fail := booking.SubmitterFunc(func(ctx context.Context, key string, sub booking.Submission) (*booking.Confirmation, error) {
		return nil, errors.New("booking service unavailable")
	})
	m := NewManager(storage.NewMemory(), fail, saturday, nil)
	m.Cart(ctx, "s1").AddItem(ctx, facial, 1)

	w, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)
	fillToConfirm(t, w)

	_, err = m.Submit(ctx, "s1")
	require.Error(t, err)

	got, err := m.Wizard("s1")
	require.NoError(t, err)
	assert.Equal(t, booking.StepConfirm, got.Step())
}

func TestSubmit_NoCheckout(t *testing.T) {
	m := NewManager(storage.NewMemory(), acceptAll(), saturday, nil)
	_, err := m.Submit(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoCheckout)
}

// sharedStorage hides Memory's ProcessLocal so the Manager treats it like
// Redis or DynamoDB shared between instances.
type sharedStorage struct{ mem *storage.Memory }

func (s sharedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.mem.Get(ctx, key)
}

func (s sharedStorage) Set(ctx context.Context, key, value string) error {
	return s.mem.Set(ctx, key, value)
}

func TestCart_SharedStorageSeesOtherInstances(t *testing.T) {
	ctx := context.Background()
	shared := sharedStorage{mem: storage.NewMemory()}
	a := NewManager(shared, nil, saturday, nil)
	b := NewManager(shared, nil, saturday, nil)

	a.Cart(ctx, "s1")
	b.Cart(ctx, "s1").AddItem(ctx, cart.LineItem{ID: "x", Price: 100}, 1)
	assert.Equal(t, 1, a.Cart(ctx, "s1").TotalItemCount())

	a.Cart(ctx, "s1").AddItem(ctx, cart.LineItem{ID: "y", Price: 200}, 1)

	reloaded := b.Cart(ctx, "s1")
	assert.Equal(t, 2, reloaded.TotalItemCount())
	assert.Equal(t, 300.0, reloaded.TotalPrice())

	raw, found, err := shared.Get(ctx, "cart:s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, raw, `"id":"x"`)
	assert.Contains(t, raw, `"id":"y"`)
}

func TestCart_SharedStorageIsNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewManager(sharedStorage{mem: storage.NewMemory()}, nil, saturday, nil)

	assert.NotSame(t, m.Cart(ctx, "s1"), m.Cart(ctx, "s1"))
}

func TestEvictIdle_ReloadsCartAndDropsWizard(t *testing.T) {
	ctx := context.Background()
	now := saturday()
	clock := func() time.Time { return now }

	m := NewManager(storage.NewMemory(), nil, clock, nil).WithIdleTimeout(10 * time.Minute)
	first := m.Cart(ctx, "s1")
	first.AddItem(ctx, facial, 2)
	w, err := m.Open(ctx, "s1", "svc-facial")
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	m.Cart(ctx, "other")

	m.mu.Lock()
	_, kept := m.sessions["s1"]
	m.mu.Unlock()
	assert.False(t, kept)
	assert.True(t, w.Closed())
	_, err = m.Wizard("s1")
	assert.ErrorIs(t, err, ErrNoCheckout)

	again := m.Cart(ctx, "s1")
	assert.NotSame(t, first, again)
	assert.Equal(t, 2, again.TotalItemCount())
}

func TestEvictIdle_KeepsActiveSessions(t *testing.T) {
	ctx := context.Background()
	now := saturday()
	clock := func() time.Time { return now }

	m := NewManager(storage.NewMemory(), nil, clock, nil).WithIdleTimeout(10 * time.Minute)
	c := m.Cart(ctx, "s1")

	now = now.Add(6 * time.Minute)
	m.Cart(ctx, "s1")
	now = now.Add(6 * time.Minute)

	assert.Same(t, c, m.Cart(ctx, "s1"))
}
