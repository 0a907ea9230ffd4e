// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Command walletd runs the privileged wallet process as a standalone
// daemon. Pages connect over a websocket; each connection gets its own
// relay hop in front of the shared dispatcher, mirroring the page/relay/
// privileged split of the in-browser deployment.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lijinhai255/plasmo-wallet-sub000/config"
	"github.com/lijinhai255/plasmo-wallet-sub000/db"
	"github.com/lijinhai255/plasmo-wallet-sub000/db/leveldb"
	"github.com/lijinhai255/plasmo-wallet-sub000/db/memorydb"
	"github.com/lijinhai255/plasmo-wallet-sub000/db/redisdb"
	"github.com/lijinhai255/plasmo-wallet-sub000/dispatch"
	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/pending"
	"github.com/lijinhai255/plasmo-wallet-sub000/relay"
	ethwallet "github.com/lijinhai255/plasmo-wallet-sub000/wallet/eth"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

var upgrader = websocket.Upgrader{
	// The relay's origin field, not the websocket handshake, is the trust
	// boundary; the daemon accepts connections from any browsing context.
	CheckOrigin: func(*http.Request) bool { return true },
}

func main() {
	configPath := flag.String("config", "", "path to the walletd config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("loading config failed")
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logger.WithError(err).Fatal("invalid log level")
	} else {
		logger.SetLevel(level)
	}
	log.Log = log.FromLogrus(logger)

	database, closeDB, err := openStore(cfg.Store)
	if err != nil {
		log.WithError(err).Fatal("opening store failed")
	}
	defer closeDB()

	account, err := loadAccount(cfg.Wallet)
	if err != nil {
		log.WithError(err).Fatal("loading wallet account failed")
	}
	w := ethwallet.NewWallet(account)
	log.WithField("address", account.Address().String()).Info("wallet loaded")

	queue, err := pending.NewQueue(db.NewTable(database, "action:"))
	if err != nil {
		log.WithError(err).Fatal("loading pending queue failed")
	}
	queue.OnChanged(func(pendingCount int) {
		log.WithField("pending", pendingCount).Info("badge count changed")
	})

	dispatcher, err := dispatch.New(queue, w, database, &dispatch.Options{
		StaleAfter:    cfg.Pending.StaleAfter(),
		SweepInterval: cfg.Pending.SweepInterval(),
		Retention:     cfg.Pending.Retention(),
		GCInterval:    cfg.Pending.GCInterval(),
	})
	if err != nil {
		log.WithError(err).Fatal("creating dispatcher failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go dispatcher.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/page", servePage(ctx, dispatcher))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	log.WithField("addr", cfg.ListenAddr).Info("walletd listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server failed")
	}
}

// servePage upgrades a page connection and runs its relay hop in front of
// the dispatcher. Each page gets its own relay so a broken page cannot take
// the daemon down.
func servePage(ctx context.Context, d *dispatch.Dispatcher) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			log.WithError(err).Debug("websocket upgrade failed")
			return
		}
		log.WithField("remote", r.RemoteAddr).Debug("page connected")

		privA, privB := wire.NewPipeConnPair()
		go d.ServeConn(ctx, privB)
		if err := relay.New(wire.NewWSConn(ws), privA).Run(ctx); err != nil {
			log.WithError(err).Debug("page connection closed")
		}
	}
}

// openStore opens the configured storage backend and returns it together
// with its closer.
func openStore(cfg config.StoreConfig) (db.Database, func(), error) {
	switch cfg.Backend {
	case config.StoreLevelDB:
		database, err := leveldb.LoadDatabase(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.Path).Info("using leveldb store")
		return database, func() { database.Close() }, nil
	case config.StoreRedis:
		database, err := redisdb.Dial(cfg.RedisAddr, cfg.RedisNamespace)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis store")
		return database, func() { database.Close() }, nil
	default:
		log.Info("using in-memory store, state is lost on exit")
		return memorydb.NewDatabase(), func() {}, nil
	}
}

// loadAccount derives the daemon's account from the configured key, or
// creates a fresh one when no key is given. The account starts unlocked;
// the approval surface may lock it.
func loadAccount(cfg config.WalletConfig) (*ethwallet.Account, error) {
	if cfg.Key == "" {
		log.Warn("no wallet key configured, generating an ephemeral account")
		account, err := ethwallet.NewRandomAccount(cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		return account, account.Unlock(cfg.Passphrase)
	}
	account, err := ethwallet.DeriveAccount(cfg.Key, cfg.Passphrase)
	if err != nil {
		return nil, err
	}
	return account, account.Unlock(cfg.Passphrase)
}
