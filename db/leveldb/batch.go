// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package leveldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

// syncWrite forces an fsync per write, so that a committed write survives a
// process crash.
var syncWrite = &opt.WriteOptions{Sync: true}

var _ db.Batch = (*Batch)(nil)

// Batch wraps a leveldb write batch. Apply writes it atomically and synced.
type Batch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *Batch) Put(key, value string) error {
	b.batch.Put([]byte(key), []byte(value))
	return nil
}

func (b *Batch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	if b.batch == nil {
		b.batch = new(leveldb.Batch)
	}
	b.batch.Put([]byte(key), value)
	return nil
}

func (b *Batch) Delete(key string) error {
	b.batch.Delete([]byte(key))
	return nil
}

func (b *Batch) Apply() error {
	if b.db == nil {
		return errors.New("batch is not bound to a database")
	}
	return errors.WithMessage(b.db.Write(b.batch, syncWrite), "leveldb batch write")
}

func (b *Batch) Reset() {
	b.batch.Reset()
}

func (b *Batch) Len() int {
	return b.batch.Len()
}
