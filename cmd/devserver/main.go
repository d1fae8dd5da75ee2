// devserver runs a local fake of the storefront REST API so the client can
// be developed without the real service. Demo logins: dani@example.com /
// cafecito, test@example.com / password.
package main

import (
	"log/slog"
	"os"

	"github.com/Da1ch1/CoffeeShop/internal/config"
	"github.com/Da1ch1/CoffeeShop/internal/devapi"
	"github.com/Da1ch1/CoffeeShop/internal/stores/kafka"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(); err != nil {
		slog.Error("devserver exited", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	keys, err := devapi.NewKeys(cfg.JWTSecret)
	if err != nil {
		return err
	}

	fixtures, err := devapi.DefaultFixtures()
	if err != nil {
		return err
	}

	var k *kafka.Conf
	if cfg.KafkaBrokers != "" {
		k, err = kafka.NewConf(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer k.Close()
		slog.Info("order event publishing enabled", slog.String("Brokers", cfg.KafkaBrokers), slog.String("Topic", cfg.KafkaTopic))
	}

	r := devapi.API(keys, fixtures, k)
	slog.Info("devserver listening", slog.String("Addr", cfg.DevserverAddr))
	return r.Run(cfg.DevserverAddr)
}
