package records

import (
	"context"
	"encoding/json"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
)

// Collection is a typed view over one collection of a Store. Values are
// stored as JSON.
//
// Read followed by Update is not atomic: two concurrent callers can lose an
// update. Mutate and Upsert hold a per-key lock for the whole
// read-modify-write, so use them whenever the new value depends on the old.
type Collection[T any] struct {
	store  Store
	name   string
	locker *KeyedLocker
}

// NewCollection binds name on store. Collections that share a locker
// serialise against each other per key; a nil locker gets a private one.
func NewCollection[T any](store Store, name string, locker *KeyedLocker) *Collection[T] {
	if locker == nil {
		locker = NewKeyedLocker()
	}
	return &Collection[T]{store: store, name: name, locker: locker}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) Create(ctx context.Context, key string, v T) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	return c.store.Create(ctx, c.name, key, data)
}

func (c *Collection[T]) Read(ctx context.Context, key string) (T, error) {
	var v T
	data, err := c.store.Read(ctx, c.name, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "decode %s/%s", c.name, key))
	}
	return v, nil
}

func (c *Collection[T]) Update(ctx context.Context, key string, v T) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	return c.store.Update(ctx, c.name, key, data)
}

func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.name, key)
}

func (c *Collection[T]) List(ctx context.Context) ([]string, error) {
	return c.store.List(ctx, c.name)
}

// ReadAll returns every record of the collection in key order. Records
// deleted between listing and reading are skipped.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, error) {
	keys, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		v, err := c.Read(ctx, k)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Mutate applies fn to the stored value of key and writes the result back
// while holding the key's lock. A missing record is ErrNotFound and an error
// from fn aborts without writing.
func (c *Collection[T]) Mutate(ctx context.Context, key string, fn func(*T) error) (T, error) {
	var zero T
	unlock, err := c.locker.Lock(ctx, c.lockKey(key))
	if err != nil {
		return zero, err
	}
	defer unlock()

	v, err := c.Read(ctx, key)
	if err != nil {
		return zero, err
	}
	if err := fn(&v); err != nil {
		return zero, err
	}
	if err := c.Update(ctx, key, v); err != nil {
		return zero, err
	}
	return v, nil
}

// Upsert behaves like Mutate but starts from init() when key is absent and
// creates the record instead of updating it.
func (c *Collection[T]) Upsert(ctx context.Context, key string, init func() T, fn func(*T) error) (T, error) {
	var zero T
	unlock, err := c.locker.Lock(ctx, c.lockKey(key))
	if err != nil {
		return zero, err
	}
	defer unlock()

	v, err := c.Read(ctx, key)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		v = init()
		if err := fn(&v); err != nil {
			return zero, err
		}
		if err := c.Create(ctx, key, v); err != nil {
			return zero, err
		}
		return v, nil
	case err != nil:
		return zero, err
	}
	if err := fn(&v); err != nil {
		return zero, err
	}
	if err := c.Update(ctx, key, v); err != nil {
		return zero, err
	}
	return v, nil
}

// Take hands the stored value of key to fn while holding the key's lock and
// deletes the record once fn succeeds, so concurrent callers never see the
// same value twice. An error from fn leaves the record in place. When the
// delete itself fails the value is returned along with the error.
func (c *Collection[T]) Take(ctx context.Context, key string, fn func(T) error) (T, error) {
	var zero T
	unlock, err := c.locker.Lock(ctx, c.lockKey(key))
	if err != nil {
		return zero, err
	}
	defer unlock()

	v, err := c.Read(ctx, key)
	if err != nil {
		return zero, err
	}
	if err := fn(v); err != nil {
		return zero, err
	}
	if err := c.Delete(ctx, key); err != nil {
		return v, err
	}
	return v, nil
}

// Lock holds the lock of key until the returned func is called. Mutate,
// Upsert and Take on key block meanwhile, so the holder must only use the
// plain Read, Create, Update and Delete on it.
func (c *Collection[T]) Lock(ctx context.Context, key string) (func(), error) {
	return c.locker.Lock(ctx, c.lockKey(key))
}

func (c *Collection[T]) lockKey(key string) string {
	return c.name + "\x00" + key
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "encode record"))
	}
	return data, nil
}
