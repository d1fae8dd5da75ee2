package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Da1ch1/CoffeeShop/pkg/ctxmanage"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

// DefaultTimeout bounds every request so a hung call cannot leave the
// stores stuck in a loading state.
const DefaultTimeout = 10 * time.Second

// Client talks to the storefront REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. An HTTP 422 is surfaced
// as an auth error so the caller can show a credentials message instead of
// a generic connection one.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	traceId := ctxmanage.GetTraceId(ctx)

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("login request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return "", connectivityError("could not reach the server", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		drain(resp.Body)
		return "", authError("invalid credentials, please check your email and password", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return "", connectivityError("could not reach the server", fmt.Errorf("login returned status %d", resp.StatusCode))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", connectivityError("could not reach the server", fmt.Errorf("failed to decode login response: %w", err))
	}
	if lr.Token == "" {
		return "", authError("invalid credentials, please check your email and password", nil)
	}
	return lr.Token, nil
}

// Products fetches one page of the catalog. An empty slice signals the end
// of pagination.
func (c *Client) Products(ctx context.Context, perPage, page int) ([]Product, error) {
	traceId := ctxmanage.GetTraceId(ctx)

	endpoint := fmt.Sprintf("%s/api/productos?per_page=%d&page=%d", c.baseURL, perPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build products request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("products request failed", slog.String(logkey.TraceID, traceId),
			slog.Int(logkey.Page, page), slog.String(logkey.ERROR, err.Error()))
		return nil, connectivityError("could not load products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return nil, connectivityError("could not load products", fmt.Errorf("products returned status %d", resp.StatusCode))
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, connectivityError("could not load products", fmt.Errorf("failed to decode products response: %w", err))
	}
	return products, nil
}

// Category fetches the products of one category. The category name is
// lower-cased, matching the route convention of the external API.
func (c *Client) Category(ctx context.Context, category string) ([]Product, error) {
	traceId := ctxmanage.GetTraceId(ctx)

	endpoint := c.baseURL + "/api/categorias/" + url.PathEscape(strings.ToLower(category))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build category request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("category request failed", slog.String(logkey.TraceID, traceId),
			slog.String("Category", category), slog.String(logkey.ERROR, err.Error()))
		return nil, connectivityError("could not load products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return nil, connectivityError("could not load products", fmt.Errorf("category returned status %d", resp.StatusCode))
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, connectivityError("could not load products", fmt.Errorf("failed to decode category response: %w", err))
	}
	return products, nil
}

// User fetches the authenticated account's profile.
func (c *Client) User(ctx context.Context, token string) (Profile, error) {
	traceId := ctxmanage.GetTraceId(ctx)

	if token == "" {
		return Profile{}, authError("you are not logged in", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user", nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("user request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return Profile{}, connectivityError("could not load your profile", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return Profile{}, authError("your session has expired, please log in again", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return Profile{}, connectivityError("could not load your profile", fmt.Errorf("user returned status %d", resp.StatusCode))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, connectivityError("could not load your profile", fmt.Errorf("failed to decode user response: %w", err))
	}
	return profile, nil
}

// SubmitOrder performs the single POST of an order. It does not retry;
// duplicate detection is the server's concern.
func (c *Client) SubmitOrder(ctx context.Context, token string, order Order) (OrderConfirmation, error) {
	traceId := ctxmanage.GetTraceId(ctx)

	if token == "" {
		return OrderConfirmation{}, authError("you must log in before placing an order", nil)
	}

	body, err := json.Marshal(order)
	if err != nil {
		return OrderConfirmation{}, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pedidos", bytes.NewReader(body))
	if err != nil {
		return OrderConfirmation{}, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("order request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return OrderConfirmation{}, connectivityError("could not place the order", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp.Body)
		return OrderConfirmation{}, authError("your session has expired, please log in again", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		drain(resp.Body)
		return OrderConfirmation{}, connectivityError("could not place the order", fmt.Errorf("order returned status %d", resp.StatusCode))
	}

	var confirmation OrderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return OrderConfirmation{}, connectivityError("could not place the order", fmt.Errorf("failed to decode order response: %w", err))
	}
	return confirmation, nil
}

// drain lets the transport reuse the connection after an error status.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4*1024))
}

// BaseURL reports the resolved endpoint, useful for startup logging.
func (c *Client) BaseURL() string { return c.baseURL }
