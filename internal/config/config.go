// Package config reads the process environment, optionally seeded from a
// .env file. A missing .env is fine; every knob has a default.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Da1ch1/CoffeeShop/internal/consul"
)

type Config struct {
	// APIBaseURL is the storefront API endpoint, used when no consul
	// address is configured.
	APIBaseURL  string
	HTTPTimeout time.Duration
	PageSize    int

	// ConsulAddr enables endpoint discovery: when set, APIService is
	// resolved from the consul catalog and overrides APIBaseURL.
	ConsulAddr string
	APIService string

	// Devserver knobs.
	DevserverAddr string
	JWTSecret     string
	KafkaBrokers  string
	KafkaTopic    string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Config{
		APIBaseURL:    getEnv("COFFEESHOP_API_URL", "http://localhost:8002"),
		PageSize:      5,
		HTTPTimeout:   10 * time.Second,
		ConsulAddr:    os.Getenv("COFFEESHOP_CONSUL_ADDR"),
		APIService:    getEnv("COFFEESHOP_API_SERVICE", "coffeeshop-api"),
		DevserverAddr: getEnv("DEVSERVER_ADDR", ":8002"),
		JWTSecret:     getEnv("DEVSERVER_JWT_SECRET", "dev-only-secret"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "coffeeshop.order-confirmed"),
	}

	if v := os.Getenv("COFFEESHOP_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid COFFEESHOP_PAGE_SIZE %q", v)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("COFFEESHOP_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid COFFEESHOP_HTTP_TIMEOUT %q", v)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// ResolveAPIBaseURL returns the endpoint to talk to, going through consul
// when discovery is configured.
func (c Config) ResolveAPIBaseURL() (string, error) {
	if c.ConsulAddr == "" {
		return c.APIBaseURL, nil
	}

	client, err := consul.NewClient(c.ConsulAddr)
	if err != nil {
		return "", err
	}
	address, port, err := consul.GetServiceAddress(client, c.APIService)
	if err != nil {
		return "", err
	}

	resolved := fmt.Sprintf("http://%s:%d", address, port)
	slog.Info("resolved api endpoint from consul", slog.String("Service", c.APIService), slog.String("Address", resolved))
	return resolved, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
