package promo

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api-gateway-go/internal/model"
)

func sampleCreate(i int) model.PromoCreate {
	return model.PromoCreate{
		Name:           fmt.Sprintf("promo-%d", i),
		Description:    "desc",
		CreatorID:      "c1",
		DiscountAmount: float64(i),
		Code:           fmt.Sprintf("CODE%d", i),
	}
}

// fakeClock only moves when advanced.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_CreateThenGet(t *testing.T) {
	s := NewStore()

	created := s.Create(model.PromoCreate{Name: "X", Description: "Y", CreatorID: "c1", DiscountAmount: 10.0, Code: "CODE1"})
	require.NotEmpty(t, created.ID)

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "X", got.Name)
	assert.Equal(t, "Y", got.Description)
	assert.Equal(t, "c1", got.CreatorID)
	assert.Equal(t, 10.0, got.DiscountAmount)
	assert.Equal(t, "CODE1", got.Code)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestStore_ListPagination(t *testing.T) {
	s := NewStore()
	for i := range 25 {
		s.Create(sampleCreate(i))
	}

	tests := []struct {
		name      string
		page      int
		limit     int
		wantItems int
		wantFirst string
	}{
		{"first page", 1, 10, 10, "promo-0"},
		{"second page", 2, 10, 10, "promo-10"},
		{"partial last page", 3, 10, 5, "promo-20"},
		{"past the end", 4, 10, 0, ""},
		{"far past the end", 100, 10, 0, ""},
		{"limit larger than total", 1, 100, 25, "promo-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.List(tt.page, tt.limit)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, 25, page.Total)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, tt.limit, page.Limit)
			assert.Equal(t, (25+tt.limit-1)/tt.limit, page.Pages)
			assert.NotNil(t, page.Items)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, page.Items[0].Name)
			}
		})
	}
}

func TestStore_ListRejectsNonPositive(t *testing.T) {
	s := NewStore()

	_, err := s.List(0, 10)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = s.List(1, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestStore_ListEmpty(t *testing.T) {
	page, err := NewStore().List(1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.Pages)
}

func TestStore_UpdatePartial(t *testing.T) {
	s := NewStore()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	created := s.Create(model.PromoCreate{Name: "X", Description: "Y", CreatorID: "c1", DiscountAmount: 10.0, Code: "CODE1"})
	clock.Advance(time.Second)

	code := "CODE2"
	updated, err := s.Update(created.ID, model.PromoUpdate{Code: &code})
	require.NoError(t, err)

	assert.Equal(t, "CODE2", updated.Code)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, "Y", updated.Description)
	assert.Equal(t, 10.0, updated.DiscountAmount)
	assert.Equal(t, "c1", updated.CreatorID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestStore_UpdateAdvancesTimestampWithoutClockMovement(t *testing.T) {
	s := NewStore()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	created := s.Create(sampleCreate(1))
	first, err := s.Update(created.ID, model.PromoUpdate{})
	require.NoError(t, err)
	second, err := s.Update(created.ID, model.PromoUpdate{Name: &first.Name})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, created.Name, second.Name)
}

func TestStore_UpdateExplicitZeroValues(t *testing.T) {
	s := NewStore()
	created := s.Create(sampleCreate(5))

	empty := ""
	zero := 0.0
	updated, err := s.Update(created.ID, model.PromoUpdate{Description: &empty, DiscountAmount: &zero})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, 0.0, updated.DiscountAmount)
	assert.Equal(t, created.Name, updated.Name)
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update("missing", model.PromoUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("missing"), ErrNotFound)
}

func TestStore_DeleteThenGet(t *testing.T) {
	s := NewStore()
	a := s.Create(sampleCreate(1))
	b := s.Create(sampleCreate(2))
	c := s.Create(sampleCreate(3))

	require.NoError(t, s.Delete(b.ID))

	_, err := s.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(b.ID), ErrNotFound)

	page, err := s.List(1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, a.ID, page.Items[0].ID)
	assert.Equal(t, c.ID, page.Items[1].ID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_ConcurrentCreates(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create(sampleCreate(i))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	page, err := s.List(1, 100)
	require.NoError(t, err)
	ids := make(map[string]bool)
	for _, p := range page.Items {
		ids[p.ID] = true
	}
	assert.Len(t, ids, 50)
}
