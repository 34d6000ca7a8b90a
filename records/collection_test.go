package records_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/RenanGalvao/pizza-ecommerce/records/memstore"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Items map[string]int `json:"items"`
}

func newCounters(t *testing.T) *records.Collection[counter] {
	t.Helper()
	return records.NewCollection[counter](memstore.New(), "carts", nil)
}

func TestRawReadUpdateLosesAnUpdate(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{}}))

	// Two writers read the same version before either writes.
	first, err := c.Read(ctx, "ana")
	require.NoError(t, err)
	second, err := c.Read(ctx, "ana")
	require.NoError(t, err)

	first.Items["margherita"] = 1
	second.Items["cola"] = 1
	require.NoError(t, c.Update(ctx, "ana", first))
	require.NoError(t, c.Update(ctx, "ana", second))

	got, err := c.Read(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"cola": 1}, got.Items)
}

func TestMutateKeepsConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{}}))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Mutate(ctx, "ana", func(v *counter) error {
				v.Items["margherita"]++
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := c.Read(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 50, got.Items["margherita"])
}

func TestMutateMissingAndAborted(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)

	_, err := c.Mutate(ctx, "nobody", func(v *counter) error { return nil })
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{"a": 1}}))
	boom := errors.New("boom")
	_, err = c.Mutate(ctx, "ana", func(v *counter) error {
		v.Items["a"] = 99
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := c.Read(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 1, got.Items["a"])
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	init := func() counter { return counter{Items: map[string]int{}} }
	add := func(v *counter) error {
		v.Items["cola"] += 2
		return nil
	}

	_, err := c.Upsert(ctx, "ana", init, add)
	require.NoError(t, err)
	got, err := c.Upsert(ctx, "ana", init, add)
	require.NoError(t, err)
	require.Equal(t, 4, got.Items["cola"])
}

func TestReadAll(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "b", counter{Items: map[string]int{"x": 2}}))
	require.NoError(t, c.Create(ctx, "a", counter{Items: map[string]int{"x": 1}}))

	all, err := c.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 1, all[0].Items["x"])
}

func TestDecodeFailureIsStoreError(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Create(ctx, "carts", "bad", []byte(`not json`)))

	c := records.NewCollection[counter](store, "carts", nil)
	_, err := c.Read(ctx, "bad")
	require.Equal(t, apperrors.ErrStore, apperrors.KindOf(err))
}

func TestKeyedLockerHonoursContext(t *testing.T) {
	l := records.NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock2, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock2()
}

func TestTakeHandsOutAValueOnce(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{"margherita": 2}}))

	var (
		wg    sync.WaitGroup
		lock  sync.Mutex
		taken int
		gone  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Take(ctx, "ana", func(v counter) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			lock.Lock()
			defer lock.Unlock()
			switch {
			case err == nil:
				taken++
			case apperrors.Is(err, apperrors.ErrNotFound):
				gone++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, taken)
	require.Equal(t, 9, gone)
	keys, err := c.List(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestTakeKeepsRecordWhenFnFails(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{"margherita": 2}}))

	declined := errors.New("card declined")
	_, err := c.Take(ctx, "ana", func(v counter) error {
		require.Equal(t, 2, v.Items["margherita"])
		return declined
	})
	require.ErrorIs(t, err, declined)

	got, err := c.Read(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 2, got.Items["margherita"])
}

func TestLockBlocksMutate(t *testing.T) {
	ctx := context.Background()
	c := newCounters(t)
	require.NoError(t, c.Create(ctx, "ana", counter{Items: map[string]int{}}))

	unlock, err := c.Lock(ctx, "ana")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = c.Mutate(waitCtx, "ana", func(v *counter) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	_, err = c.Mutate(ctx, "ana", func(v *counter) error { return nil })
	require.NoError(t, err)
}
