// Package recordstest holds the behaviour every records.Store backend must
// share. Backend tests call Run with a constructor for a fresh, empty store.
package recordstest

import (
	"context"
	"testing"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, newStore func(t *testing.T) records.Store) {
	t.Helper()

	t.Run("create then read", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, "users", "a@b.com", []byte(`{"name":"Ana"}`)))
		got, err := s.Read(ctx, "users", "a@b.com")
		require.NoError(t, err)
		require.JSONEq(t, `{"name":"Ana"}`, string(got))
	})

	t.Run("create never overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, "menu", "k1", []byte(`{"v":1}`)))
		err := s.Create(ctx, "menu", "k1", []byte(`{"v":2}`))
		require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

		got, err := s.Read(ctx, "menu", "k1")
		require.NoError(t, err)
		require.JSONEq(t, `{"v":1}`, string(got))
	})

	t.Run("missing records", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Read(ctx, "carts", "nobody")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		require.ErrorIs(t, s.Update(ctx, "carts", "nobody", []byte(`{}`)), apperrors.ErrNotFound)
		require.ErrorIs(t, s.Delete(ctx, "carts", "nobody"), apperrors.ErrNotFound)
	})

	t.Run("delete then delete again", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, "tokens", "t1", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, "tokens", "t1"))
		require.ErrorIs(t, s.Delete(ctx, "tokens", "t1"), apperrors.ErrNotFound)

		_, err := s.Read(ctx, "tokens", "t1")
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		require.NoError(t, s.Create(ctx, "tokens", "t1", []byte(`{"again":true}`)))
	})

	t.Run("update replaces wholesale", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, "users", "u", []byte(`{"a":1,"b":2}`)))
		require.NoError(t, s.Update(ctx, "users", "u", []byte(`{"c":3}`)))
		got, err := s.Read(ctx, "users", "u")
		require.NoError(t, err)
		require.JSONEq(t, `{"c":3}`, string(got))
	})

	t.Run("list never written collection", func(t *testing.T) {
		s := newStore(t)
		keys, err := s.List(context.Background(), "ghosts")
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("list is sorted and per collection", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, k := range []string{"b", "a", "c"} {
			require.NoError(t, s.Create(ctx, "menu", k, []byte(`{}`)))
		}
		require.NoError(t, s.Create(ctx, "carts", "z", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, "menu", "c"))

		keys, err := s.List(ctx, "menu")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, keys)
	})

	t.Run("keys are case sensitive and opaque", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Create(ctx, "users", "Key", []byte(`{"v":"upper"}`)))
		require.NoError(t, s.Create(ctx, "users", "key", []byte(`{"v":"lower"}`)))
		require.NoError(t, s.Create(ctx, "users", "odd/../key:1", []byte(`{"v":"odd"}`)))

		got, err := s.Read(ctx, "users", "Key")
		require.NoError(t, err)
		require.JSONEq(t, `{"v":"upper"}`, string(got))

		keys, err := s.List(ctx, "users")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"Key", "key", "odd/../key:1"}, keys)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Create(ctx, "users", "x", []byte(`{}`))
		require.Error(t, err)
		require.Equal(t, apperrors.ErrStore, apperrors.KindOf(err))
	})
}
