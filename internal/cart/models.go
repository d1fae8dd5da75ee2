package cart

import "github.com/Da1ch1/CoffeeShop/internal/api"

// Entry is a product copied into the cart plus its quantity. Product fields
// are frozen at the time of adding; the catalog never mutates them in place.
type Entry struct {
	Product  api.Product
	Quantity int
}

// Line reduces an entry to the (id, quantity) pair sent on order submission.
func (e Entry) Line() api.OrderLine {
	return api.OrderLine{ProductID: e.Product.ID, Quantity: e.Quantity}
}
