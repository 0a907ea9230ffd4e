// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package redisdb provides a redis-backed implementation of the db
// interfaces, for deployments where the wallet daemon's state must live in a
// shared store.
package redisdb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

var _ db.Database = (*Database)(nil)

// Database is a redis-backed database. All keys live under a common
// namespace prefix so that several wallets can share one redis.
type Database struct {
	ctx       context.Context
	client    redis.UniversalClient
	namespace string
}

// NewDatabase creates a database on the given redis client. The namespace
// is prepended to all keys.
func NewDatabase(client redis.UniversalClient, namespace string) *Database {
	return &Database{
		ctx:       context.Background(),
		client:    client,
		namespace: namespace,
	}
}

// Dial connects to a redis server and creates a database on it.
func Dial(addr, namespace string) (*Database, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.WithMessagef(err, "pinging redis at %q", addr)
	}
	return NewDatabase(client, namespace), nil
}

// Close closes the underlying redis client.
func (d *Database) Close() error {
	return errors.WithMessage(d.client.Close(), "closing redis client")
}

func (d *Database) nkey(key string) string { return d.namespace + key }

func (d *Database) Has(key string) (bool, error) {
	n, err := d.client.Exists(d.ctx, d.nkey(key)).Result()
	return n > 0, errors.WithMessage(err, "redis exists")
}

func (d *Database) Get(key string) (string, error) {
	value, err := d.client.Get(d.ctx, d.nkey(key)).Result()
	if err == redis.Nil {
		return "", errors.Errorf("key not found: %q", key)
	}
	return value, errors.WithMessage(err, "redis get")
}

func (d *Database) GetBytes(key string) ([]byte, error) {
	value, err := d.Get(key)
	return []byte(value), err
}

func (d *Database) Put(key, value string) error {
	return errors.WithMessage(
		d.client.Set(d.ctx, d.nkey(key), value, 0).Err(), "redis set")
}

func (d *Database) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	return d.Put(key, string(value))
}

func (d *Database) Delete(key string) error {
	return errors.WithMessage(
		d.client.Del(d.ctx, d.nkey(key)).Err(), "redis del")
}

func (d *Database) NewIterator() db.Iterator {
	return d.NewIteratorWithPrefix("")
}

// NewIteratorWithPrefix snapshots the matching keys via SCAN and fetches
// values lazily. Entries deleted between snapshot and access are skipped.
func (d *Database) NewIteratorWithPrefix(prefix string) db.Iterator {
	match := d.nkey(prefix) + "*"
	var keys []string
	iter := d.client.Scan(d.ctx, 0, match, 0).Iterator()
	for iter.Next(d.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return &iterator{err: errors.WithMessage(err, "redis scan")}
	}
	sort.Strings(keys)
	return &iterator{db: d, keys: keys, idx: -1}
}

func (d *Database) NewBatch() db.Batch {
	return &Batch{db: d}
}

type iterator struct {
	db    *Database
	keys  []string
	idx   int
	value string
	err   error
}

func (i *iterator) Next() bool {
	if i.err != nil {
		return false
	}
	for i.idx+1 < len(i.keys) {
		i.idx++
		value, err := i.db.client.Get(i.db.ctx, i.keys[i.idx]).Result()
		if err == redis.Nil {
			continue // Deleted since the snapshot.
		} else if err != nil {
			i.err = errors.WithMessage(err, "redis get")
			return false
		}
		i.value = value
		return true
	}
	return false
}

func (i *iterator) Key() string {
	return strings.TrimPrefix(i.keys[i.idx], i.db.namespace)
}

func (i *iterator) Value() string      { return i.value }
func (i *iterator) ValueBytes() []byte { return []byte(i.value) }
func (i *iterator) Close() error       { return i.err }
