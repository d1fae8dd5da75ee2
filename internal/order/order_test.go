package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/internal/cart"
	"github.com/Da1ch1/CoffeeShop/internal/session"
)

func product(id int, name, price string) api.Product {
	return api.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Available: true}
}

type fixture struct {
	submitter *Submitter
	cart      *cart.Store
	requests  *atomic.Int32
	lastBody  *api.Order
}

func newFixture(t *testing.T, status int, loggedIn bool) *fixture {
	t.Helper()

	f := &fixture{requests: &atomic.Int32{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "abc"})
	})
	mux.HandleFunc("/api/pedidos", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		var body api.Order
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			f.lastBody = &body
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(api.OrderConfirmation{ID: "order-1", Status: "confirmado", Total: body.Total})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)

	sess, err := session.NewStore(client, session.NewMemoryStore())
	require.NoError(t, err)
	if loggedIn {
		require.NoError(t, sess.Login(context.Background(), "dani@example.com", "cafecito"))
	}

	f.cart = cart.New()
	f.submitter, err = NewSubmitter(client, f.cart, sess)
	require.NoError(t, err)
	return f
}

func TestSubmitEmptyCartIsValidationError(t *testing.T) {
	f := newFixture(t, http.StatusOK, true)

	_, err := f.submitter.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindValidation, api.KindOf(err))
	assert.Equal(t, int32(0), f.requests.Load(), "an empty cart must not hit the network")
}

func TestSubmitWithoutTokenIsAuthError(t *testing.T) {
	f := newFixture(t, http.StatusOK, false)
	require.NoError(t, f.cart.Add(product(5, "Mocha", "3.50"), 2))

	_, err := f.submitter.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindAuth, api.KindOf(err))
	assert.Equal(t, int32(0), f.requests.Load())
	assert.Equal(t, 1, f.cart.Len(), "the cart must be untouched")
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	f := newFixture(t, http.StatusOK, true)
	require.NoError(t, f.cart.Add(product(5, "Mocha", "3.50"), 2))
	require.NoError(t, f.cart.Add(product(7, "Brownie", "10.00"), 1))

	confirmation, err := f.submitter.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order-1", confirmation.ID)
	assert.True(t, f.cart.IsEmpty(), "a confirmed order empties the cart")

	// The request body carries (id, quantity) pairs and the precomputed total.
	require.NotNil(t, f.lastBody)
	require.Len(t, f.lastBody.Products, 2)
	assert.Equal(t, api.OrderLine{ProductID: 5, Quantity: 2}, f.lastBody.Products[0])
	assert.Equal(t, api.OrderLine{ProductID: 7, Quantity: 1}, f.lastBody.Products[1])
	assert.True(t, f.lastBody.Total.Equal(decimal.RequireFromString("17.00")),
		"total was %s", f.lastBody.Total)
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, true)
	require.NoError(t, f.cart.Add(product(5, "Mocha", "3.50"), 2))
	require.NoError(t, f.cart.Add(product(7, "Brownie", "10.00"), 1))

	before := f.cart.Items()

	_, err := f.submitter.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.KindConnectivity, api.KindOf(err))
	assert.Equal(t, before, f.cart.Items(), "a failed order must leave every entry as it was")

	// Resubmission after the failure re-sends the full cart.
	_, _ = f.submitter.Submit(context.Background())
	assert.Equal(t, int32(2), f.requests.Load())
}
