// Package cart holds the in-memory shopping cart. The cart is the sole
// owner of its entries; it does not persist and does not survive a restart.
//
// The original storefront overloaded one "add to cart" call with both
// increment and replace semantics depending on the screen it was called
// from. Here each flow gets its own operation: Add increments (browsing),
// SetQuantity replaces (editing).
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Da1ch1/CoffeeShop/internal/api"
)

type Store struct {
	mu      sync.Mutex
	entries []Entry
	index   map[int]int // product id -> position in entries
}

func New() *Store {
	return &Store{index: make(map[int]int)}
}

// Add puts quantity more units of product in the cart. If the product is
// already present its quantity is incremented, never duplicated.
func (s *Store) Add(product api.Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[product.ID]; ok {
		s.entries[pos].Quantity += quantity
		return nil
	}
	s.entries = append(s.entries, Entry{Product: product, Quantity: quantity})
	s.index[product.ID] = len(s.entries) - 1
	return nil
}

// SetQuantity replaces the quantity of an entry already in the cart.
// A quantity of zero or less removes the entry.
func (s *Store) SetQuantity(productID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[productID]
	if !ok {
		return fmt.Errorf("product %d is not in the cart", productID)
	}
	if quantity <= 0 {
		s.removeLocked(pos)
		return nil
	}
	s.entries[pos].Quantity = quantity
	return nil
}

// Remove deletes the entry for productID. Removing an absent product is
// not an error.
func (s *Store) Remove(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[productID]; ok {
		s.removeLocked(pos)
	}
}

func (s *Store) removeLocked(pos int) {
	delete(s.index, s.entries[pos].Product.ID)
	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	for i := pos; i < len(s.entries); i++ {
		s.index[s.entries[i].Product.ID] = i
	}
}

// Subtotal is the sum of price times quantity over all entries, rounded to
// two places for display. The empty cart totals 0.00.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.entries {
		total = total.Add(e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total.Round(2)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) == 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Entry, len(s.entries))
	copy(items, s.entries)
	return items
}

// Clear empties the cart. Called by the order submitter on confirmed
// success only.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = make(map[int]int)
}
