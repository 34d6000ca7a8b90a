package memstore

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
)

var _ records.Store = (*Store)(nil)

// Store keeps records in process memory. Values are copied on the way in
// and out so callers cannot alias stored bytes.
type Store struct {
	collections map[string]map[string][]byte
	lock        sync.RWMutex
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (s *Store) Create(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		s.collections[collection] = c
	}
	if _, exists := c[key]; exists {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "%s/%s", collection, key)
	}
	c[key] = clone(value)
	return nil
}

func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.collections[collection][key]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return clone(v), nil
}

func (s *Store) Update(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	c := s.collections[collection]
	if _, ok := c[key]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	c[key] = clone(value)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	c := s.collections[collection]
	if _, ok := c[key]; !ok {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	delete(c, key)
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]string, 0, len(s.collections[collection]))
	for k := range s.collections[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
