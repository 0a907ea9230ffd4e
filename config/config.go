// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package config reads the walletd configuration file. The file is JWCC
// (JSON with commas and comments), so deployments can annotate their
// settings; it is standardized to plain JSON before decoding.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tailscale/hujson"
)

// Storage backend selectors.
const (
	StoreMemory  = "memory"
	StoreLevelDB = "leveldb"
	StoreRedis   = "redis"
)

// Config is the walletd root configuration.
type Config struct {
	ListenAddr string        `json:"listen_addr"`
	LogLevel   string        `json:"log_level"`
	Store      StoreConfig   `json:"store"`
	Wallet     WalletConfig  `json:"wallet"`
	Pending    PendingConfig `json:"pending"`
}

// StoreConfig selects where the pending queue and wallet state live.
type StoreConfig struct {
	Backend        string `json:"backend"` // memory, leveldb or redis
	Path           string `json:"path"`    // leveldb directory
	RedisAddr      string `json:"redis_addr"`
	RedisNamespace string `json:"redis_namespace"`
}

// WalletConfig holds the account secret. Both fields fall back to the
// environment so the secret does not have to live in the config file.
type WalletConfig struct {
	Key        string `json:"key"`        // hex private key, or $WALLETD_KEY
	Passphrase string `json:"passphrase"` // or $WALLETD_PASSPHRASE
}

// PendingConfig tunes the pending-action queue's timing policy. Zero values
// select the dispatcher defaults.
type PendingConfig struct {
	StaleAfterSeconds    int `json:"stale_after_seconds"`
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
	RetentionSeconds     int `json:"retention_seconds"`
	GCIntervalSeconds    int `json:"gc_interval_seconds"`
}

// StaleAfter returns the staleness window as a duration, zero if unset.
func (p PendingConfig) StaleAfter() time.Duration {
	return time.Duration(p.StaleAfterSeconds) * time.Second
}

// SweepInterval returns the sweep interval as a duration, zero if unset.
func (p PendingConfig) SweepInterval() time.Duration {
	return time.Duration(p.SweepIntervalSeconds) * time.Second
}

// Retention returns the resolved-action retention as a duration, zero if
// unset.
func (p PendingConfig) Retention() time.Duration {
	return time.Duration(p.RetentionSeconds) * time.Second
}

// GCInterval returns the garbage collection interval as a duration, zero if
// unset.
func (p PendingConfig) GCInterval() time.Duration {
	return time.Duration(p.GCIntervalSeconds) * time.Second
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":8546",
		LogLevel:   "info",
		Store: StoreConfig{
			Backend:   StoreMemory,
			RedisAddr: os.Getenv("REDIS_ADDR"),
		},
		Wallet: WalletConfig{
			Key:        os.Getenv("WALLETD_KEY"),
			Passphrase: os.Getenv("WALLETD_PASSPHRASE"),
		},
	}
}

// Load reads and validates a configuration file, overlaying it onto the
// defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WithMessage(err, "reading config file")
	}
	standardized, err := hujson.Standardize(content)
	if err != nil {
		return Config{}, errors.WithMessage(err, "standardizing config file")
	}
	if err := cfg.unmarshal(standardized); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

// unmarshal decodes strictly so that misspelled keys fail loudly instead of
// silently keeping their default.
func (c *Config) unmarshal(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return errors.WithMessage(dec.Decode(c), "parsing config file")
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreLevelDB:
		if c.Store.Path == "" {
			return errors.New("leveldb backend needs store.path")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("redis backend needs store.redis_addr")
		}
	default:
		return errors.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	return nil
}
