// Package promo implements the promo backend: an insertion-ordered in-memory
// store served over the promorpc gRPC contract. Nothing is persisted; a
// restart starts from an empty collection.
package promo

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"api-gateway-go/internal/model"
)

// ErrNotFound is returned when no promo has the requested id.
var ErrNotFound = errors.New("promo not found")

// ErrInvalidPage is returned for a page or limit below 1.
var ErrInvalidPage = errors.New("page and limit must be positive")

// Store keeps promos keyed by id in insertion order. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*model.Promo
	order []string
	now   func() time.Time
	newID func() string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byID:  make(map[string]*model.Promo),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create stores a new promo with a fresh id and createdAt == updatedAt.
func (s *Store) Create(in model.PromoCreate) model.Promo {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := &model.Promo{
		ID:             s.newID(),
		Name:           in.Name,
		Description:    in.Description,
		CreatorID:      in.CreatorID,
		DiscountAmount: in.DiscountAmount,
		Code:           in.Code,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return *p
}

// List returns the slice [(page-1)*limit, page*limit) of the collection.
// Pages past the end are empty, not an error.
func (s *Store) List(page, limit int) (model.PromoPage, error) {
	if page < 1 || limit < 1 {
		return model.PromoPage{}, ErrInvalidPage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.order)
	out := model.PromoPage{
		Items: []model.Promo{},
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	}

	start := (page - 1) * limit
	if start >= total {
		return out, nil
	}
	end := min(start+limit, total)
	for _, id := range s.order[start:end] {
		out.Items = append(out.Items, *s.byID[id])
	}
	return out, nil
}

// Get returns the promo with the given id.
func (s *Store) Get(id string) (model.Promo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Promo{}, ErrNotFound
	}
	return *p, nil
}

// Update applies the present fields of in. updatedAt always moves forward,
// even when no value changes.
func (s *Store) Update(id string, in model.PromoUpdate) (model.Promo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return model.Promo{}, ErrNotFound
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.DiscountAmount != nil {
		p.DiscountAmount = *in.DiscountAmount
	}
	if in.Code != nil {
		p.Code = *in.Code
	}

	now := s.now()
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Microsecond)
	}
	p.UpdatedAt = now
	return *p, nil
}

// Delete removes the promo with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored promos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
