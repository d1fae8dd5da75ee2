// storefront is a terminal front-end over the storefront client: browse
// the catalog, fill a cart, log in and place an order.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/internal/cart"
	"github.com/Da1ch1/CoffeeShop/internal/catalog"
	"github.com/Da1ch1/CoffeeShop/internal/config"
	"github.com/Da1ch1/CoffeeShop/internal/order"
	"github.com/Da1ch1/CoffeeShop/internal/session"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

const keyringService = "CoffeeShop"

type app struct {
	catalog   *catalog.Fetcher
	cart      *cart.Store
	session   *session.Store
	submitter *order.Submitter
}

func main() {
	// Logs go to stderr so the prompt output stays clean.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(); err != nil {
		slog.Error("storefront exited", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseURL, err := cfg.ResolveAPIBaseURL()
	if err != nil {
		return err
	}

	client, err := api.NewClient(baseURL, cfg.HTTPTimeout)
	if err != nil {
		return err
	}

	tokens, err := session.NewKeyringStore(keyringService)
	if err != nil {
		return err
	}
	sess, err := session.NewStore(client, tokens)
	if err != nil {
		return err
	}

	cartStore := cart.New()
	fetcher, err := catalog.NewFetcher(client, cfg.PageSize)
	if err != nil {
		return err
	}
	submitter, err := order.NewSubmitter(client, cartStore, sess)
	if err != nil {
		return err
	}

	a := &app{catalog: fetcher, cart: cartStore, session: sess, submitter: submitter}

	switch a.session.Restore() {
	case session.StatusAuthenticated:
		fmt.Println("Welcome back, you are logged in.")
	default:
		fmt.Println("Welcome. Log in with: login <email> <password>")
	}
	fmt.Printf("Connected to %s. Type 'help' for commands.\n", client.BaseURL())

	return a.repl()
}

func (a *app) repl() error {
	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			printHelp()
		case "products", "more":
			a.loadMore(ctx)
		case "search":
			a.search(strings.Join(args, " "))
		case "category":
			a.category(ctx, strings.Join(args, " "))
		case "add":
			a.add(args)
		case "set":
			a.set(args)
		case "remove":
			a.remove(args)
		case "cart":
			a.showCart()
		case "checkout":
			a.checkout(ctx)
		case "login":
			a.login(ctx, args)
		case "logout":
			a.logout()
		case "whoami":
			a.whoami(ctx)
		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  products | more        load the next catalog page
  search <term>          filter loaded products by name
  category <name>        list a category (cafe, postres, bebidas)
  add <id> <qty>         add a product to the cart
  set <id> <qty>         change a cart entry's quantity (0 removes)
  remove <id>            remove a product from the cart
  cart                   show the cart and subtotal
  checkout               confirm the order
  login <email> <pass>   log in
  logout                 log out
  whoami                 show the logged-in profile
  quit                   leave`)
}

func (a *app) loadMore(ctx context.Context) {
	fetched, err := a.catalog.FetchNextPage(ctx)
	if err != nil {
		fmt.Println(api.Message(err))
		return
	}
	if !fetched && !a.catalog.HasMore() {
		fmt.Println("no more products.")
	}
	printProducts(a.catalog.Products())
}

func (a *app) search(term string) {
	printProducts(a.catalog.Search(term))
}

func (a *app) category(ctx context.Context, name string) {
	if name == "" {
		fmt.Println("usage: category <name>")
		return
	}
	products, err := a.catalog.FetchCategory(ctx, name)
	if err != nil {
		fmt.Println(api.Message(err))
		return
	}
	printProducts(products)
}

func (a *app) add(args []string) {
	id, qty, ok := parseIdQty(args, "add")
	if !ok {
		return
	}
	product, found := a.findProduct(id)
	if !found {
		fmt.Printf("product %d is not loaded, run 'products' first\n", id)
		return
	}
	if !product.Available {
		fmt.Printf("%s is not available right now\n", product.Name)
		return
	}
	if err := a.cart.Add(product, qty); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("added %d x %s\n", qty, product.Name)
}

func (a *app) set(args []string) {
	id, qty, ok := parseIdQty(args, "set")
	if !ok {
		return
	}
	if err := a.cart.SetQuantity(id, qty); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("updated.")
}

func (a *app) remove(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: remove <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("usage: remove <id>")
		return
	}
	a.cart.Remove(id)
	fmt.Println("removed.")
}

func (a *app) showCart() {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("the cart is empty.")
		return
	}
	for _, item := range items {
		lineTotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Printf("  %3d x %-24s $%s\n", item.Quantity, item.Product.Name, lineTotal.StringFixed(2))
	}
	fmt.Printf("subtotal: $%s\n", a.cart.Subtotal().StringFixed(2))
}

func (a *app) checkout(ctx context.Context) {
	confirmation, err := a.submitter.Submit(ctx)
	if err != nil {
		fmt.Println(api.Message(err))
		return
	}
	fmt.Printf("order %s confirmed, total $%s\n", confirmation.ID, confirmation.Total.StringFixed(2))
}

func (a *app) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	if err := a.session.Login(ctx, args[0], args[1]); err != nil {
		fmt.Println(api.Message(err))
		return
	}
	fmt.Println("logged in.")
}

func (a *app) logout() {
	if err := a.session.Logout(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("logged out.")
}

func (a *app) whoami(ctx context.Context) {
	profile, err := a.session.Profile(ctx)
	if err != nil {
		fmt.Println(api.Message(err))
		return
	}
	fmt.Printf("hello, %s! (%s)\n", profile.Name, profile.Email)
}

func (a *app) findProduct(id int) (api.Product, bool) {
	for _, p := range a.catalog.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

func parseIdQty(args []string, usage string) (int, int, bool) {
	if len(args) != 2 {
		fmt.Printf("usage: %s <id> <qty>\n", usage)
		return 0, 0, false
	}
	id, err1 := strconv.Atoi(args[0])
	qty, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Printf("usage: %s <id> <qty>\n", usage)
		return 0, 0, false
	}
	return id, qty, true
}

func printProducts(products []api.Product) {
	if len(products) == 0 {
		fmt.Println("nothing to show.")
		return
	}
	for _, p := range products {
		note := ""
		if !p.Available {
			note = "  (unavailable)"
		}
		fmt.Printf("  [%d] %-24s $%s%s\n", p.ID, p.Name, p.Price.StringFixed(2), note)
	}
}
