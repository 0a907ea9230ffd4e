// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package leveldb provides the goleveldb-backed durable implementation of
// the db interfaces. It is the default persistent backend of the wallet
// daemon.
package leveldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

var _ db.Database = (*Database)(nil)

// Database is a leveldb-backed database. Writes are synced to disk before
// the call returns, so a committed write survives a process restart.
type Database struct {
	db *leveldb.DB
}

// LoadDatabase opens (or creates) a database at the given path.
func LoadDatabase(path string) (*Database, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening leveldb at %q", path)
	}
	return &Database{db: ldb}, nil
}

// Close closes the underlying leveldb handle.
func (d *Database) Close() error {
	return errors.WithMessage(d.db.Close(), "closing leveldb")
}

func (d *Database) Has(key string) (bool, error) {
	has, err := d.db.Has([]byte(key), nil)
	return has, errors.WithMessage(err, "leveldb has")
}

func (d *Database) Get(key string) (string, error) {
	value, err := d.GetBytes(key)
	return string(value), err
}

func (d *Database) GetBytes(key string) ([]byte, error) {
	value, err := d.db.Get([]byte(key), nil)
	return value, errors.WithMessagef(err, "leveldb get %q", key)
}

func (d *Database) Put(key, value string) error {
	return errors.WithMessage(
		d.db.Put([]byte(key), []byte(value), syncWrite), "leveldb put")
}

func (d *Database) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	if d.db == nil {
		return errors.New("database is not open")
	}
	return errors.WithMessage(
		d.db.Put([]byte(key), value, syncWrite), "leveldb put")
}

func (d *Database) Delete(key string) error {
	return errors.WithMessage(
		d.db.Delete([]byte(key), syncWrite), "leveldb delete")
}

func (d *Database) NewIterator() db.Iterator {
	return &Iterator{it: d.db.NewIterator(nil, nil)}
}

func (d *Database) NewIteratorWithPrefix(prefix string) db.Iterator {
	return &Iterator{it: d.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)}
}

func (d *Database) NewBatch() db.Batch {
	return &Batch{db: d.db, batch: new(leveldb.Batch)}
}

var _ db.Iterator = (*Iterator)(nil)

// Iterator wraps a leveldb iterator. Key and value buffers are only valid
// until the next call to Next, so they are copied out.
type Iterator struct {
	it iterator.Iterator
}

func (i *Iterator) Next() bool { return i.it.Next() }

func (i *Iterator) Key() string { return string(i.it.Key()) }

func (i *Iterator) Value() string { return string(i.it.Value()) }

func (i *Iterator) ValueBytes() []byte {
	value := i.it.Value()
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp
}

func (i *Iterator) Close() error {
	i.it.Release()
	return errors.WithMessage(i.it.Error(), "leveldb iterator")
}
