package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, 2*time.Second)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient("", time.Second)
	assert.Error(t, err)
}

func TestProductsDecodesWireNames(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/productos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`[{"id":5,"nombre":"Mocha","precio":4.20,"imagen":null,"disponible":true,"categoria_id":1}]`))
	}))

	products, err := client.Products(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, 5, p.ID)
	assert.Equal(t, "Mocha", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("4.20")))
	assert.Nil(t, p.Image)
	assert.True(t, p.Available)
	assert.Equal(t, 1, p.CategoryID)
}

func TestCategoryLowercasesThePath(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categorias/postres", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	}))

	products, err := client.Category(context.Background(), "Postres")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestLoginErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    Kind
	}{
		{
			name: "422 is an auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			kind: KindAuth,
		},
		{
			name: "missing token is an auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{})
			},
			kind: KindAuth,
		},
		{
			name: "server error is a connectivity error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			kind: KindConnectivity,
		},
		{
			name: "malformed response is a connectivity error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{not json`))
			},
			kind: KindConnectivity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, tc.handler)
			_, err := client.Login(context.Background(), "dani@example.com", "pw")
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestSubmitOrderSendsBearerAndBody(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/pedidos", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Contains(t, raw, "productos")
		assert.Contains(t, raw, "total")

		_ = json.NewEncoder(w).Encode(OrderConfirmation{ID: "o-1", Status: "confirmado"})
	}))

	order := Order{
		Products: []OrderLine{{ProductID: 5, Quantity: 2}},
		Total:    decimal.RequireFromString("7.00"),
	}
	confirmation, err := client.SubmitOrder(context.Background(), "abc", order)
	require.NoError(t, err)
	assert.Equal(t, "o-1", confirmation.ID)
}

func TestSubmitOrderWithoutTokenFailsFast(t *testing.T) {
	called := false
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.SubmitOrder(context.Background(), "", Order{})
	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.False(t, called)
}

func TestUserExpiredSessionIsAuthError(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.User(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestTimeoutSettlesAsConnectivityError(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Products(ctx, 5, 1)
	require.Error(t, err)
	assert.Equal(t, KindConnectivity, KindOf(err))
}

func TestKindOfForeignErrorDefaultsToConnectivity(t *testing.T) {
	assert.Equal(t, KindConnectivity, KindOf(errors.New("boom")))
	assert.Equal(t, "could not reach the server", Message(errors.New("boom")))
}
