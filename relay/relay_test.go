// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package relay

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// newRelayedPair wires page <-> relay <-> priv and runs the relay until the
// test finishes. It returns the two outer endpoints.
func newRelayedPair(t *testing.T) (page, priv wire.Conn) {
	t.Helper()
	page, relayPage := wire.NewPipeConnPair()
	relayPriv, priv := wire.NewPipeConnPair()

	r := New(relayPage, relayPriv)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		page.Close()
		priv.Close()
		<-done
	})
	return page, priv
}

func TestRelay_ForwardsBothWays(t *testing.T) {
	t.Parallel()

	page, priv := newRelayedPair(t)

	req := &wire.RequestMsg{
		RequestID: "r-1",
		Method:    wire.MethodGetChainID,
		Origin:    "https://dapp.example",
	}
	require.NoError(t, page.Send(req))

	m, err := priv.Recv()
	require.NoError(t, err)
	got, ok := m.(*wire.RequestMsg)
	require.True(t, ok)
	assert.Equal(t, req.RequestID, got.RequestID)
	assert.Equal(t, req.Method, got.Method)
	assert.Equal(t, req.Origin, got.Origin, "origin must survive the hop untouched")

	reply := &wire.ReplyMsg{
		RequestID: "r-1",
		Success:   true,
		Data:      json.RawMessage(`{"chainId":"1"}`),
	}
	require.NoError(t, priv.Send(reply))

	m, err = page.Recv()
	require.NoError(t, err)
	gotReply, ok := m.(*wire.ReplyMsg)
	require.True(t, ok)
	assert.Equal(t, "r-1", gotReply.RequestID)
	assert.True(t, gotReply.Success)
	assert.JSONEq(t, `{"chainId":"1"}`, string(gotReply.Data))
}

// rwc glues a pipe reader and writer into a raw byte stream so the test can
// inject hand-crafted JSON below the Conn layer.
type rwc struct {
	io.Reader
	io.WriteCloser
}

// TestRelay_DropsMalformed injects shape-invalid documents between two valid
// requests; the relay must drop them without breaking the channel.
func TestRelay_DropsMalformed(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe() // page -> relay raw bytes
	relayPage := wire.NewIOConn(&rwc{pr, pw})
	relayPriv, priv := wire.NewPipeConnPair()

	r := New(relayPage, relayPriv)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)
	defer priv.Close()

	docs := []string{
		`{"type":"REQUEST","requestId":"ok-1","method":"connect-status","origin":"https://a"}`,
		`{"type":"REQUEST","method":"connect"}`,            // missing requestId
		`{"type":"REPLY","requestId":"x"}`,                 // missing success flag
		`{"type":"PING","requestId":"y"}`,                  // unknown type
		`{"type":"REQUEST","requestId":"z","origin":"o"}`,  // missing method
		`{"type":"REQUEST","requestId":"ok-2","method":"get-chain-id","origin":"https://a"}`,
	}
	go func() {
		for _, d := range docs {
			if _, err := io.WriteString(pw, d+"\n"); err != nil {
				return
			}
		}
	}()

	recvIDs := func() (ids []string) {
		for len(ids) < 2 {
			m, err := priv.Recv()
			require.NoError(t, err)
			ids = append(ids, m.ID())
		}
		return ids
	}

	done := make(chan []string, 1)
	go func() { done <- recvIDs() }()
	select {
	case ids := <-done:
		assert.Equal(t, []string{"ok-1", "ok-2"}, ids, "only the well-formed requests pass")
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not forward the valid requests")
	}
}

func TestRelay_RunStopsOnClose(t *testing.T) {
	t.Parallel()

	page, relayPage := wire.NewPipeConnPair()
	relayPriv, priv := wire.NewPipeConnPair()
	defer page.Close()

	r := New(relayPage, relayPriv)
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	priv.Close()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop after connection close")
	}
}

func TestRelay_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	_, relayPage := wire.NewPipeConnPair()
	relayPriv, _ := wire.NewPipeConnPair()

	r := New(relayPage, relayPriv)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop on context cancel")
	}
}
