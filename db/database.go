// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package db defines the durable key-value store the wallet persists its
// state in. The store is a black box satisfying read-your-writes
// consistency; backends exist for memory, leveldb and redis.
package db

// Reader wraps the read methods of a key-value store.
type Reader interface {
	// Has checks for the existence of a key.
	Has(key string) (bool, error)
	// Get returns the value stored under the given key. Returns an error if
	// the key does not exist.
	Get(key string) (string, error)
	// GetBytes returns the byte value stored under the given key. Returns an
	// error if the key does not exist.
	GetBytes(key string) ([]byte, error)
}

// Writer wraps the write methods of a key-value store. All writes are
// durable once the call returns.
type Writer interface {
	// Put stores a value under a key, overwriting any previous value.
	Put(key, value string) error
	// PutBytes stores a byte value under a key. The value must not be nil.
	PutBytes(key string, value []byte) error
	// Delete removes the given key. Deleting a missing key is a no-op.
	Delete(key string) error
}

// Database is a durable key-value store.
type Database interface {
	Reader
	Writer

	// NewIterator returns an iterator over all keys, sorted ascending.
	NewIterator() Iterator
	// NewIteratorWithPrefix returns an iterator over all keys with the given
	// prefix, sorted ascending.
	NewIteratorWithPrefix(prefix string) Iterator
	// NewBatch creates a write batch against this database.
	NewBatch() Batch
}

// Iterator iterates over a snapshot of a database's key-value pairs in
// ascending key order. Iterators must be closed after use.
type Iterator interface {
	// Next advances to the next entry and reports whether one exists.
	Next() bool
	// Key returns the current entry's key.
	Key() string
	// Value returns the current entry's value.
	Value() string
	// ValueBytes returns the current entry's value as bytes.
	ValueBytes() []byte
	// Close releases the iterator.
	Close() error
}

// Batch collects writes that are applied to the database atomically.
type Batch interface {
	Writer

	// Apply writes the batch's collected operations to the database.
	Apply() error
	// Reset discards the batch's collected operations.
	Reset()
	// Len returns the number of collected operations.
	Len() int
}
