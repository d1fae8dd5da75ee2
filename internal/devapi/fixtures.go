package devapi

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Da1ch1/CoffeeShop/internal/api"
)

// Category ids used by the fixtures.
const (
	categoryCafe    = 1
	categoryPostres = 2
	categoryBebidas = 3
)

var categorySlugs = map[string]int{
	"cafe":    categoryCafe,
	"postres": categoryPostres,
	"bebidas": categoryBebidas,
}

// Account is a demo login for local development.
type Account struct {
	Email        string
	Name         string
	PasswordHash []byte
}

// Fixtures is the in-memory dataset the devserver serves. There is no
// database behind it on purpose; restart the process to reset state.
type Fixtures struct {
	Products []api.Product
	Accounts map[string]Account
}

func DefaultFixtures() (*Fixtures, error) {
	accounts, err := demoAccounts()
	if err != nil {
		return nil, err
	}
	return &Fixtures{
		Products: demoProducts(),
		Accounts: accounts,
	}, nil
}

// ProductByID looks a fixture product up.
func (f *Fixtures) ProductByID(id int) (api.Product, bool) {
	for _, p := range f.Products {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

// ByCategory returns the products of one category slug. An unknown slug
// yields an empty, non-nil slice.
func (f *Fixtures) ByCategory(slug string) []api.Product {
	out := make([]api.Product, 0)
	id, ok := categorySlugs[slug]
	if !ok {
		return out
	}
	for _, p := range f.Products {
		if p.CategoryID == id {
			out = append(out, p)
		}
	}
	return out
}

// Page returns the [perPage*(page-1), perPage*page) window of the product
// list. Past the end it returns an empty, non-nil slice, which is the
// client's end-of-pagination signal.
func (f *Fixtures) Page(perPage, page int) []api.Product {
	start := perPage * (page - 1)
	if start >= len(f.Products) {
		return make([]api.Product, 0)
	}
	end := start + perPage
	if end > len(f.Products) {
		end = len(f.Products)
	}
	out := make([]api.Product, end-start)
	copy(out, f.Products[start:end])
	return out
}

func demoAccounts() (map[string]Account, error) {
	accounts := map[string]Account{}
	for _, a := range []struct{ email, name, password string }{
		{"dani@example.com", "Dani", "cafecito"},
		{"test@example.com", "Test", "password"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash demo password: %w", err)
		}
		accounts[a.email] = Account{Email: a.email, Name: a.name, PasswordHash: hash}
	}
	return accounts, nil
}

func demoProducts() []api.Product {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	img := func(s string) *string { return &s }

	return []api.Product{
		{ID: 1, Name: "Espresso", Price: price("2.50"), Image: img("https://cdn.example.com/img/espresso.jpg"), Available: true, CategoryID: categoryCafe},
		{ID: 2, Name: "Cappuccino", Price: price("3.50"), Image: img("https://cdn.example.com/img/cappuccino.jpg"), Available: true, CategoryID: categoryCafe},
		{ID: 3, Name: "Latte", Price: price("3.80"), Image: img("https://cdn.example.com/img/latte.jpg"), Available: true, CategoryID: categoryCafe},
		{ID: 4, Name: "Americano", Price: price("2.80"), Image: nil, Available: true, CategoryID: categoryCafe},
		{ID: 5, Name: "Mocha", Price: price("4.20"), Image: img("https://cdn.example.com/img/mocha.jpg"), Available: true, CategoryID: categoryCafe},
		{ID: 6, Name: "Cheesecake", Price: price("4.50"), Image: img("https://cdn.example.com/img/cheesecake.jpg"), Available: true, CategoryID: categoryPostres},
		{ID: 7, Name: "Brownie", Price: price("3.00"), Image: img("https://cdn.example.com/img/brownie.jpg"), Available: true, CategoryID: categoryPostres},
		{ID: 8, Name: "Croissant", Price: price("2.20"), Image: nil, Available: true, CategoryID: categoryPostres},
		{ID: 9, Name: "Alfajor", Price: price("1.80"), Image: img("https://cdn.example.com/img/alfajor.jpg"), Available: false, CategoryID: categoryPostres},
		{ID: 10, Name: "Chocolate Caliente", Price: price("3.20"), Image: img("https://cdn.example.com/img/chocolate.jpg"), Available: true, CategoryID: categoryBebidas},
		{ID: 11, Name: "Te Chai", Price: price("2.90"), Image: nil, Available: true, CategoryID: categoryBebidas},
		{ID: 12, Name: "Limonada", Price: price("2.50"), Image: img("https://cdn.example.com/img/limonada.jpg"), Available: true, CategoryID: categoryBebidas},
	}
}
