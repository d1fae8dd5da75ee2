package api

import "github.com/shopspring/decimal"

// Product mirrors the wire shape of the catalog API. Field names on the
// wire are fixed by the external service.
type Product struct {
	ID         int             `json:"id"`
	Name       string          `json:"nombre"`
	Price      decimal.Decimal `json:"precio"`
	Image      *string         `json:"imagen"`
	Available  bool            `json:"disponible"`
	CategoryID int             `json:"categoria_id"`
}

// OrderLine is one (product, quantity) pair of an order submission.
type OrderLine struct {
	ProductID int `json:"id"`
	Quantity  int `json:"cantidad"`
}

// Order is the request body of POST /api/pedidos. Built at submission time
// and discarded after the request settles.
type Order struct {
	Products []OrderLine     `json:"productos"`
	Total    decimal.Decimal `json:"total"`
}

// OrderConfirmation is the success response of POST /api/pedidos.
type OrderConfirmation struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// Profile is the response of GET /api/user.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
