// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package redisdb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lijinhai255/plasmo-wallet-sub000/db/test"
)

func TestDatabase_PutBytes_NilArgs(t *testing.T) {
	err := new(Database).PutBytes("key", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")
}

// TestDatabase runs the generic backend suite against a real redis. It is
// skipped unless REDIS_ADDR points at a test server.
func TestDatabase(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	d, err := Dial(addr, "walletdbtest:")
	require.NoError(t, err)
	defer d.Close()

	t.Run("Generic Database test", func(t *testing.T) {
		test.GenericDatabaseTest(t, d)
	})
	t.Run("Generic Batch test", func(t *testing.T) {
		test.GenericBatchTest(t, d)
	})
	t.Run("Generic Table test", func(t *testing.T) {
		test.GenericTableTest(t, d)
	})
}
