// Package order turns the cart into a single POST against the order
// endpoint. Orders are transient: built at submission time, never retained.
package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/internal/cart"
	"github.com/Da1ch1/CoffeeShop/internal/session"
	"github.com/Da1ch1/CoffeeShop/pkg/ctxmanage"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

type Submitter struct {
	client  *api.Client
	cart    *cart.Store
	session *session.Store
}

func NewSubmitter(client *api.Client, c *cart.Store, s *session.Store) (*Submitter, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	if c == nil {
		return nil, fmt.Errorf("cart store is nil")
	}
	if s == nil {
		return nil, fmt.Errorf("session store is nil")
	}
	return &Submitter{client: client, cart: c, session: s}, nil
}

// Submit sends the whole cart as one order. An empty cart and a missing
// token both fail before any network call. The cart is cleared only on a
// confirmed success; every failure leaves it untouched so the user can
// retry. Resubmission after a failure re-sends the full cart — duplicate
// detection is the server's job.
func (s *Submitter) Submit(ctx context.Context) (api.OrderConfirmation, error) {
	if s.cart.IsEmpty() {
		return api.OrderConfirmation{}, &api.Error{Kind: api.KindValidation,
			Msg: "the cart is empty, add products before confirming the order"}
	}

	token := s.session.Token()
	if token == "" {
		return api.OrderConfirmation{}, &api.Error{Kind: api.KindAuth,
			Msg: "you must log in before placing an order"}
	}

	items := s.cart.Items()
	lines := make([]api.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Line())
	}
	o := api.Order{Products: lines, Total: s.cart.Subtotal()}

	ctx = ctxmanage.WithTraceId(ctx)
	traceId := ctxmanage.GetTraceId(ctx)

	confirmation, err := s.client.SubmitOrder(ctx, token, o)
	if err != nil {
		slog.Error("order submission failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		return api.OrderConfirmation{}, fmt.Errorf("failed to submit order: %w", err)
	}

	s.cart.Clear()
	slog.Info("order confirmed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, confirmation.ID), slog.String("Total", o.Total.StringFixed(2)))
	return confirmation, nil
}
