// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package db

import (
	"strings"

	"github.com/pkg/errors"
)

var _ Database = (*table)(nil)

// table is a (sub-)Database operating on a prefixed keyspace of a backing
// database. It lets independent wallet concerns share one database without
// key collisions.
type table struct {
	db     Database
	prefix string
}

// NewTable creates a prefixed view onto a database. Panics if db is nil.
func NewTable(db Database, prefix string) Database {
	if db == nil {
		panic("NewTable: db must not be nil")
	}
	return &table{db: db, prefix: prefix}
}

func (t *table) pkey(key string) string { return t.prefix + key }

func (t *table) Has(key string) (bool, error) {
	return t.db.Has(t.pkey(key))
}

func (t *table) Get(key string) (string, error) {
	return t.db.Get(t.pkey(key))
}

func (t *table) GetBytes(key string) ([]byte, error) {
	return t.db.GetBytes(t.pkey(key))
}

func (t *table) Put(key, value string) error {
	return t.db.Put(t.pkey(key), value)
}

func (t *table) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	return t.db.PutBytes(t.pkey(key), value)
}

func (t *table) Delete(key string) error {
	return t.db.Delete(t.pkey(key))
}

func (t *table) NewIterator() Iterator {
	return &tableIterator{it: t.db.NewIteratorWithPrefix(t.prefix), prefix: t.prefix}
}

func (t *table) NewIteratorWithPrefix(prefix string) Iterator {
	return &tableIterator{it: t.db.NewIteratorWithPrefix(t.prefix + prefix), prefix: t.prefix}
}

func (t *table) NewBatch() Batch {
	return &tableBatch{batch: t.db.NewBatch(), prefix: t.prefix}
}

// tableIterator strips the table prefix from the backing iterator's keys.
type tableIterator struct {
	it     Iterator
	prefix string
}

func (i *tableIterator) Next() bool         { return i.it.Next() }
func (i *tableIterator) Key() string        { return strings.TrimPrefix(i.it.Key(), i.prefix) }
func (i *tableIterator) Value() string      { return i.it.Value() }
func (i *tableIterator) ValueBytes() []byte { return i.it.ValueBytes() }
func (i *tableIterator) Close() error       { return i.it.Close() }

// tableBatch prefixes all batched keys with the table prefix.
type tableBatch struct {
	batch  Batch
	prefix string
}

func (b *tableBatch) Put(key, value string) error {
	return b.batch.Put(b.prefix+key, value)
}

func (b *tableBatch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	return b.batch.PutBytes(b.prefix+key, value)
}

func (b *tableBatch) Delete(key string) error {
	return b.batch.Delete(b.prefix + key)
}

func (b *tableBatch) Apply() error { return b.batch.Apply() }
func (b *tableBatch) Reset()       { b.batch.Reset() }
func (b *tableBatch) Len() int     { return b.batch.Len() }
