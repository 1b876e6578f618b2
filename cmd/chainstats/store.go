package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/btcsuite/btcd/rpcclient"

	"github.com/goodnatureofminers/chainstats-backend/internal/metrics"
	"github.com/goodnatureofminers/chainstats-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/chainstats-backend/internal/repository/memory"
	"github.com/goodnatureofminers/chainstats-backend/internal/repository/postgres"
	"github.com/goodnatureofminers/chainstats-backend/internal/service/ingester"
	"github.com/goodnatureofminers/chainstats-backend/internal/transport/rest"
)

type metricsStore interface {
	ingester.Store
	rest.Store
	Ping(ctx context.Context) error
	Close() error
}

func newStore(cfg config) (metricsStore, error) {
	switch cfg.Store {
	case "clickhouse":
		if cfg.ClickhouseDSN == "" {
			return nil, errors.New("clickhouse dsn is required")
		}
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewRepository("clickhouse"))
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is required")
		}
		repo, err := postgres.NewRepository(cfg.PostgresDSN, metrics.NewRepository("postgres"))
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		return memory.NewRepository(metrics.NewRepository("memory")), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	cfg, err := rpcConnConfig(rawURL, user, password)
	if err != nil {
		return nil, err
	}
	return rpcclient.New(cfg, nil)
}

func rpcConnConfig(rawURL, user, password string) (*rpcclient.ConnConfig, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}
	return &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil
}
