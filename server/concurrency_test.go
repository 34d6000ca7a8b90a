package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/RenanGalvao/pizza-ecommerce/payments/fakegateway"
	"github.com/stretchr/testify/require"
)

// heldGateway parks every charge until release is closed.
type heldGateway struct {
	*fakegateway.FakeGateway
	entered chan struct{}
	release chan struct{}
}

func (g *heldGateway) Charge(ctx context.Context, req payments.ChargeRequest) (payments.Charge, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return payments.Charge{}, ctx.Err()
	}
	return g.FakeGateway.Charge(ctx, req)
}

// post is safe to call from several goroutines; it reports failures instead
// of stopping the test.
func (f *testFixture) post(path string, payload any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Post(f.srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func postConcurrently(f *testFixture, n int, path string, payload any) ([]int, []error) {
	var (
		wg       sync.WaitGroup
		lock     sync.Mutex
		statuses []int
		errs     []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := f.post(path, payload)
			lock.Lock()
			defer lock.Unlock()
			statuses = append(statuses, status)
			if err != nil {
				errs = append(errs, err)
			}
		}()
	}
	wg.Wait()
	sort.Ints(statuses)
	return statuses, errs
}

func TestConcurrentOrdersChargeTheCartOnce(t *testing.T) {
	gateway := &heldGateway{entered: make(chan struct{}, 2), release: make(chan struct{})}
	f := setupTestFixture(t, func(f *testFixture) {
		gateway.FakeGateway = f.gateway
		f.payments = gateway
	})
	f.signUp(t)
	f.login(t)
	id := f.addMenuItem(t, "Margherita", 10)
	r := f.do(t, http.MethodPost, "/api/card", map[string]any{"stripe_token": "tok_visa"})
	require.Equal(t, http.StatusCreated, r.status)
	r = f.do(t, http.MethodPost, "/api/cart", map[string]any{"item_id": id, "quantity": 1})
	require.Equal(t, http.StatusCreated, r.status)

	var (
		statuses []int
		errs     []error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		statuses, errs = postConcurrently(f, 2, "/api/order", map[string]any{})
	}()

	<-gateway.entered
	// give the second order time to reach the cart while the first is charging
	time.Sleep(100 * time.Millisecond)
	close(gateway.release)
	<-done

	require.Empty(t, errs)
	require.Equal(t, []int{http.StatusCreated, http.StatusBadRequest}, statuses)
	require.Len(t, f.gateway.Charges, 1)
	require.Equal(t, int64(1000), f.gateway.Charges[0].AmountCents)
	require.Empty(t, gateway.entered)
}

func TestConcurrentCartAddsAreAllKept(t *testing.T) {
	f := setupTestFixture(t)
	f.signUp(t)
	f.login(t)
	id := f.addMenuItem(t, "Margherita", 10)

	statuses, errs := postConcurrently(f, 20, "/api/cart", map[string]any{"item_id": id, "quantity": 1})
	require.Empty(t, errs)
	for _, status := range statuses {
		require.Equal(t, http.StatusCreated, status)
	}

	r := f.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, []any{map[string]any{"item_id": id, "quantity": float64(20)}}, r.body["items"])
}
