// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package memorydb

import (
	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

var _ db.Batch = (*Batch)(nil)

// Batch collects writes and applies them to the in-memory database under a
// single lock acquisition.
type Batch struct {
	db  *Database
	ops []op
}

type op struct {
	del   bool
	key   string
	value string
}

func (b *Batch) Put(key, value string) error {
	b.ops = append(b.ops, op{key: key, value: value})
	return nil
}

func (b *Batch) PutBytes(key string, value []byte) error {
	if value == nil {
		return errors.New("PutBytes: value must not be nil")
	}
	return b.Put(key, string(value))
}

func (b *Batch) Delete(key string) error {
	b.ops = append(b.ops, op{del: true, key: key})
	return nil
}

func (b *Batch) Apply() error {
	if b.db == nil {
		return errors.New("batch is not bound to a database")
	}
	b.db.mutex.Lock()
	defer b.db.mutex.Unlock()
	for _, op := range b.ops {
		if op.del {
			delete(b.db.data, op.key)
		} else {
			b.db.data[op.key] = op.value
		}
	}
	return nil
}

func (b *Batch) Reset() { b.ops = nil }

func (b *Batch) Len() int { return len(b.ops) }
