package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage is a map-backed Storage with switchable failures.
type fakeStorage struct {
	mu      sync.Mutex
	data    map[string]string
	setErr  error
	getErr  error
	setCall int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: map[string]string{}}
}

func (f *fakeStorage) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStorage) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStorage) stored(t *testing.T, key string) []LineItem {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []LineItem
	require.NoError(t, json.Unmarshal([]byte(f.data[key]), &items))
	return items
}

var (
	facial   = LineItem{ID: "svc-facial", Name: "Hydra Facial", Slug: "hydra-facial", Price: 500, Duration: "60 min", Category: "skin"}
	manicure = LineItem{ID: "svc-mani", Name: "Gel Manicure", Slug: "gel-manicure", Price: 350, Duration: "45 min", Category: "nails"}
	serum    = LineItem{ID: "prd-serum", Name: "Vitamin C Serum", Slug: "vitamin-c-serum", Price: 899.5, Category: "products"}
)

func TestAddItem_MergesQuantities(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)

	x := LineItem{ID: "x", Price: 10}
	s.AddItem(ctx, x, 1)
	s.AddItem(ctx, x, 2)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddItem_KeepsOriginalFieldsOnMerge(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)

	s.AddItem(ctx, facial, 1)
	repriced := facial
	repriced.Price = 650
	repriced.Name = "Hydra Facial Deluxe"
	s.AddItem(ctx, repriced, 1)

	got, ok := s.Item(facial.ID)
	require.True(t, ok)
	assert.Equal(t, 500.0, got.Price)
	assert.Equal(t, "Hydra Facial", got.Name)
	assert.Equal(t, 2, got.Quantity)
}

func TestAddItem_NonPositiveQuantityDefaultsToOne(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)

	s.AddItem(ctx, facial, 0)
	s.AddItem(ctx, manicure, -4)

	assert.Equal(t, 2, s.TotalItemCount())
	for _, it := range s.Items() {
		assert.Equal(t, 1, it.Quantity)
	}
}

func TestAddItem_IgnoresMissingID(t *testing.T) {
	st := newFakeStorage()
	s := NewStore(st, "cart:s1", nil)

	s.AddItem(context.Background(), LineItem{Name: "ghost", Price: 1}, 1)

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, st.setCall)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)
	s.AddItem(ctx, facial, 2)
	s.AddItem(ctx, manicure, 1)

	s.SetQuantity(ctx, facial.ID, 0)
	_, ok := s.Item(facial.ID)
	assert.False(t, ok)

	s.SetQuantity(ctx, manicure.ID, -3)
	assert.Empty(t, s.Items())
}

func TestSetQuantity_UpdatesAndIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)
	s.AddItem(ctx, facial, 1)

	s.SetQuantity(ctx, facial.ID, 5)
	s.SetQuantity(ctx, "does-not-exist", 7)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestQuantityInvariant_RandomSequence(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)

	ops := []struct {
		add bool
		id  string
		qty int
	}{
		{true, "a", 1}, {true, "b", 3}, {false, "a", -1}, {true, "a", 2},
		{false, "b", 1}, {false, "b", 0}, {true, "c", 0}, {false, "c", 4},
		{false, "a", -10}, {true, "b", 5}, {false, "zzz", 3},
	}
	for _, op := range ops {
		if op.add {
			s.AddItem(ctx, LineItem{ID: op.id, Price: 1}, op.qty)
		} else {
			s.SetQuantity(ctx, op.id, op.qty)
		}
		for _, it := range s.Items() {
			require.Greater(t, it.Quantity, 0, "line %s has non-positive quantity", it.ID)
		}
	}
}

func TestRemoveItem_And_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)
	s.AddItem(ctx, facial, 1)
	s.AddItem(ctx, manicure, 1)

	s.RemoveItem(ctx, "unknown")
	assert.Len(t, s.Items(), 2)

	s.RemoveItem(ctx, facial.ID)
	assert.Len(t, s.Items(), 1)

	s.Clear(ctx)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItemCount())
	assert.Equal(t, 0.0, s.TotalPrice())
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)

	s.AddItem(ctx, facial, 3)
	assert.Equal(t, 1500.0, s.TotalPrice())

	s.AddItem(ctx, manicure, 2)
	assert.Equal(t, 5, s.TotalItemCount())
	assert.Equal(t, 2200.0, s.TotalPrice())
}

func TestPersistence_EveryMutationWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	st := newFakeStorage()
	s := NewStore(st, "cart:s1", nil)

	s.AddItem(ctx, facial, 2)
	got := st.stored(t, "cart:s1")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)

	s.AddItem(ctx, serum, 1)
	assert.Len(t, st.stored(t, "cart:s1"), 2)

	s.SetQuantity(ctx, facial.ID, 4)
	assert.Equal(t, 4, st.stored(t, "cart:s1")[0].Quantity)

	s.RemoveItem(ctx, serum.ID)
	assert.Len(t, st.stored(t, "cart:s1"), 1)

	s.Clear(ctx)
	assert.Empty(t, st.stored(t, "cart:s1"))
}

func TestLoad_ReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newFakeStorage()
	original := NewStore(st, "cart:s1", nil)
	original.AddItem(ctx, facial, 3)
	original.AddItem(ctx, manicure, 1)
	original.AddItem(ctx, serum, 2)
	original.AddItem(ctx, facial, 1)

	restored := NewStore(st, "cart:s1", nil)
	restored.Load(ctx)

	assert.Equal(t, original.TotalItemCount(), restored.TotalItemCount())
	assert.Equal(t, original.TotalPrice(), restored.TotalPrice())
	assert.Equal(t, original.Items(), restored.Items())

	// a second Load must not replay again
	restored.Load(ctx)
	assert.Equal(t, original.TotalItemCount(), restored.TotalItemCount())
}

func TestLoad_CorruptSnapshotStartsEmpty(t *testing.T) {
	st := newFakeStorage()
	st.data["cart:s1"] = "{not json"

	s := NewStore(st, "cart:s1", nil)
	s.Load(context.Background())

	assert.Empty(t, s.Items())
}

func TestLoad_SkipsInvalidStoredLines(t *testing.T) {
	st := newFakeStorage()
	st.data["cart:s1"] = `[{"id":"a","price":10,"quantity":2},{"id":"","price":5,"quantity":1},{"id":"b","price":3,"quantity":0}]`

	s := NewStore(st, "cart:s1", nil)
	s.Load(context.Background())

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestStorageFailures_DoNotCrash(t *testing.T) {
	ctx := context.Background()
	st := newFakeStorage()
	st.getErr = errors.New("storage disabled")
	st.setErr = errors.New("quota exceeded")

	s := NewStore(st, "cart:s1", nil)
	s.Load(ctx)
	s.AddItem(ctx, facial, 2)
	s.SetQuantity(ctx, facial.ID, 3)

	assert.Equal(t, 3, s.TotalItemCount())
	assert.Equal(t, 1500.0, s.TotalPrice())
}

func TestItems_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newFakeStorage(), "cart:s1", nil)
	s.AddItem(ctx, facial, 1)

	items := s.Items()
	items[0].Quantity = 99

	got, _ := s.Item(facial.ID)
	assert.Equal(t, 1, got.Quantity)
}
