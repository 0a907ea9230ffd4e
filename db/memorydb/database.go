// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package memorydb provides an in-memory implementation of the db
// interfaces. It is used in tests and as the default backend when no
// durable store is configured.
package memorydb

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

var _ db.Database = (*Database)(nil)

// Database is a fully thread-safe in-memory database.
type Database struct {
	mutex sync.RWMutex
	data  map[string]string
}

// NewDatabase creates a new, empty in-memory database.
func NewDatabase() *Database {
	return &Database{data: make(map[string]string)}
}

// FromData creates a database that operates directly on the provided map.
// A nil map is treated like an empty map.
func FromData(data map[string]string) *Database {
	if data == nil {
		data = make(map[string]string)
	}
	return &Database{data: data}
}

func (d *Database) Has(key string) (bool, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	_, ok := d.data[key]
	return ok, nil
}

func (d *Database) Get(key string) (string, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	value, ok := d.data[key]
	if !ok {
		return "", errors.Errorf("key not found: %q", key)
	}
	return value, nil
}

func (d *Database) GetBytes(key string) ([]byte, error) {
	value, err := d.Get(key)
	return []byte(value), err
}

func (d *Database) Put(key, value string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.data[key] = value
	return nil
}

func (d *Database) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	return d.Put(key, string(value))
}

func (d *Database) Delete(key string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	delete(d.data, key)
	return nil
}

func (d *Database) NewIterator() db.Iterator {
	return d.NewIteratorWithPrefix("")
}

func (d *Database) NewIteratorWithPrefix(prefix string) db.Iterator {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	// Iterators operate on a sorted snapshot of the data.
	keys := make([]string, 0, len(d.data))
	values := make([]string, 0, len(d.data))
	for key := range d.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		values = append(values, d.data[key])
	}

	return &iterator{keys: keys, values: values, idx: -1}
}

func (d *Database) NewBatch() db.Batch {
	return &Batch{db: d}
}

type iterator struct {
	keys   []string
	values []string
	idx    int
}

func (i *iterator) Next() bool {
	if i.idx+1 >= len(i.keys) {
		return false
	}
	i.idx++
	return true
}

func (i *iterator) Key() string        { return i.keys[i.idx] }
func (i *iterator) Value() string      { return i.values[i.idx] }
func (i *iterator) ValueBytes() []byte { return []byte(i.values[i.idx]) }
func (i *iterator) Close() error       { return nil }
