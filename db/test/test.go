// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package test provides generic tests that every db backend must pass.
package test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
)

// GenericDatabaseTest runs the full read/write/iterate contract against an
// empty database.
func GenericDatabaseTest(t *testing.T, d db.Database) {
	t.Run("put get delete", func(t *testing.T) {
		has, err := d.Has("k")
		require.NoError(t, err)
		assert.False(t, has)

		_, err = d.Get("k")
		assert.Error(t, err, "Get of missing key must fail")

		require.NoError(t, d.Put("k", "v"))
		has, err = d.Has("k")
		require.NoError(t, err)
		assert.True(t, has)

		v, err := d.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)

		require.NoError(t, d.Put("k", "v2"), "overwriting must work")
		v, err = d.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v2", v)

		require.NoError(t, d.PutBytes("kb", []byte{0, 1, 2}))
		b, err := d.GetBytes("kb")
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 2}, b)

		assert.Error(t, d.PutBytes("kb", nil), "nil values must be rejected")

		require.NoError(t, d.Delete("k"))
		require.NoError(t, d.Delete("kb"))
		has, err = d.Has("k")
		require.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, d.Delete("missing"), "deleting a missing key is a no-op")
	})

	t.Run("iterator", func(t *testing.T) {
		pairs := map[string]string{
			"wallet:a": "1",
			"wallet:b": "2",
			"wallet:c": "3",
			"other:x":  "4",
		}
		for k, v := range pairs {
			require.NoError(t, d.Put(k, v))
		}

		it := d.NewIteratorWithPrefix("wallet:")
		var keys, values []string
		for it.Next() {
			keys = append(keys, it.Key())
			values = append(values, it.Value())
		}
		require.NoError(t, it.Close())
		assert.Equal(t, []string{"wallet:a", "wallet:b", "wallet:c"}, keys)
		assert.Equal(t, []string{"1", "2", "3"}, values)

		it = d.NewIterator()
		n := 0
		for it.Next() {
			n++
		}
		require.NoError(t, it.Close())
		assert.Equal(t, len(pairs), n)

		for k := range pairs {
			require.NoError(t, d.Delete(k))
		}
	})
}

// GenericBatchTest checks that batched writes become visible exactly on
// Apply.
func GenericBatchTest(t *testing.T, d db.Database) {
	batch := d.NewBatch()
	require.NoError(t, batch.Put("ba", "1"))
	require.NoError(t, batch.PutBytes("bb", []byte("2")))
	require.NoError(t, batch.Delete("ba"))
	assert.Equal(t, 3, batch.Len())

	has, err := d.Has("bb")
	require.NoError(t, err)
	assert.False(t, has, "batched write must not be visible before Apply")

	require.NoError(t, batch.Apply())

	has, err = d.Has("ba")
	require.NoError(t, err)
	assert.False(t, has, "in-batch delete after put must win")
	v, err := d.Get("bb")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	batch.Reset()
	assert.Zero(t, batch.Len())
	require.NoError(t, batch.Put("bc", "3"))
	require.NoError(t, batch.Apply())
	has, err = d.Has("bc")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, d.Delete("bb"))
	require.NoError(t, d.Delete("bc"))
}

// GenericTableTest checks that a prefixed table isolates its keyspace from
// the backing database.
func GenericTableTest(t *testing.T, d db.Database) {
	table := db.NewTable(d, "tbl:")
	require.NoError(t, table.Put("k", "v"))

	v, err := d.Get("tbl:k")
	require.NoError(t, err)
	assert.Equal(t, "v", v, "table writes must land under the prefix")

	require.NoError(t, d.Put("outside", "x"))
	it := table.NewIterator()
	var keys []string
	for it.Next() {
		keys = append(keys, it.Key())
	}
	require.NoError(t, it.Close())
	assert.Equal(t, []string{"k"}, keys, "table iterators must strip the prefix and hide foreign keys")

	require.NoError(t, table.Delete("k"))
	has, err := d.Has("tbl:k")
	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, d.Delete("outside"))
}
