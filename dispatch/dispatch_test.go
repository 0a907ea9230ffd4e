// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lijinhai255/plasmo-wallet-sub000/client"
	"github.com/lijinhai255/plasmo-wallet-sub000/db/memorydb"
	"github.com/lijinhai255/plasmo-wallet-sub000/pending"
	"github.com/lijinhai255/plasmo-wallet-sub000/relay"
	ethwallet "github.com/lijinhai255/plasmo-wallet-sub000/wallet/eth"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

const (
	testSecret = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	testPass   = "correct horse"
	testOrigin = "https://dapp.example"
)

// fixture is a fully wired in-process wallet: client <-> dispatcher over a
// pipe pair, memory-backed queue and state, one unlocked account.
type fixture struct {
	client     *client.Client
	dispatcher *Dispatcher
	queue      *pending.Queue
	wallet     *ethwallet.Wallet
}

var testTimeouts = &client.Timeouts{Query: 5 * time.Second, Interactive: 5 * time.Second}

func newFixture(t *testing.T, opts *Options) *fixture {
	t.Helper()

	account, err := ethwallet.DeriveAccount(testSecret, testPass)
	require.NoError(t, err)
	require.NoError(t, account.Unlock(testPass))
	w := ethwallet.NewWallet(account)

	queue, err := pending.NewQueue(memorydb.NewDatabase())
	require.NoError(t, err)

	d, err := New(queue, w, memorydb.NewDatabase(), opts)
	require.NoError(t, err)

	page, priv := wire.NewPipeConnPair()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.ServeConn(ctx, priv)
	}()

	c := client.NewClient(page, testOrigin, testTimeouts)
	t.Cleanup(func() {
		cancel()
		c.Close()
		<-done
	})
	return &fixture{client: c, dispatcher: d, queue: queue, wallet: w}
}

// connect approves the fixture origin's connection out of band so that
// tests can start from a connected page.
func (f *fixture) connect(t *testing.T) {
	t.Helper()
	errs := make(chan error, 1)
	go func() {
		_, err := f.client.Connect(context.Background())
		errs <- err
	}()
	action := f.waitPending(t)
	require.Equal(t, pending.KindConnection, action.Kind)
	_, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	require.NoError(t, <-errs)
}

// waitPending polls until exactly one pending action exists and returns it.
func (f *fixture) waitPending(t *testing.T) *pending.Action {
	t.Helper()
	var action *pending.Action
	require.Eventually(t, func() bool {
		actions := f.dispatcher.ListPending()
		if len(actions) != 1 {
			return false
		}
		action = actions[0]
		return true
	}, 5*time.Second, 5*time.Millisecond, "pending action did not appear")
	return action
}

func TestDispatcher_New_NilArgs(t *testing.T) {
	t.Parallel()

	queue, err := pending.NewQueue(memorydb.NewDatabase())
	require.NoError(t, err)
	account, err := ethwallet.DeriveAccount(testSecret, testPass)
	require.NoError(t, err)
	w := ethwallet.NewWallet(account)

	_, err = New(nil, w, memorydb.NewDatabase(), nil)
	assert.Error(t, err)
	_, err = New(queue, nil, memorydb.NewDatabase(), nil)
	assert.Error(t, err)
	_, err = New(queue, w, nil, nil)
	assert.Error(t, err)
}

// TestSignMessageApproved is the full interactive round trip: the request
// parks as a pending action, the surface approves with the default result,
// and the deferred reply carries a recoverable signature.
func TestSignMessageApproved(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	const message = "hello wallet"
	results := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		signed, err := f.client.SignMessage(context.Background(), message)
		results <- signed
		errs <- err
	}()

	action := f.waitPending(t)
	assert.Equal(t, pending.KindSignature, action.Kind)
	assert.Equal(t, testOrigin, action.Origin)
	assert.NotEmpty(t, action.RequestID)

	var payload struct {
		Message string `json:"message"`
		Origin  string `json:"origin"`
	}
	require.NoError(t, json.Unmarshal(action.Payload, &payload))
	assert.Equal(t, message, payload.Message)
	assert.Equal(t, testOrigin, payload.Origin)

	resolved, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusApproved, resolved.Status)

	signed := <-results
	require.NoError(t, <-errs)
	assert.NotEmpty(t, signed)
	assert.Equal(t, "0x", signed[:2])

	// The terminal action stays around for audit, but is no longer pending.
	assert.Empty(t, f.dispatcher.ListPending())
	assert.Equal(t, 0, f.queue.PendingCount())
}

// TestSignMessageExplicitResult approves with a surface-supplied signature
// instead of the default local signing.
func TestSignMessageExplicitResult(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	results := make(chan string, 1)
	go func() {
		signed, _ := f.client.SignMessage(context.Background(), "hello")
		results <- signed
	}()

	action := f.waitPending(t)
	_, err := f.dispatcher.Approve(action.ID, json.RawMessage(`"0xsig"`))
	require.NoError(t, err)
	assert.Equal(t, "0xsig", <-results)
}

// TestLateApproval lets the caller time out before the human approves. The
// late deferred reply is discarded page-side, but the action still commits
// as approved for audit and the badge count drops to zero.
func TestLateApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	short := &client.Timeouts{Query: 5 * time.Second, Interactive: 50 * time.Millisecond}
	page, priv := wire.NewPipeConnPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.dispatcher.ServeConn(ctx, priv)
	c := client.NewClient(page, testOrigin, short)
	defer c.Close()

	_, err := c.SignMessage(context.Background(), "too slow")
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.Timeout))

	// The human approves after the page has moved on.
	action := f.waitPending(t)
	resolved, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusApproved, resolved.Status)
	assert.Equal(t, 0, f.queue.PendingCount())

	got, err := f.queue.Get(action.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusApproved, got.Status, "terminal status is recorded for audit")
}

// TestSignMessageRejected checks the rejection path: the caller receives a
// coded user-rejection error and the action commits as rejected.
func TestSignMessageRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	errs := make(chan error, 1)
	go func() {
		_, err := f.client.SignMessage(context.Background(), "nope")
		errs <- err
	}()

	action := f.waitPending(t)
	resolved, err := f.dispatcher.Reject(action.ID, "user dismissed the prompt")
	require.NoError(t, err)
	assert.Equal(t, pending.StatusRejected, resolved.Status)

	err = <-errs
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.UserRejected))
	assert.Contains(t, err.Error(), "dismissed")
}

// TestConnectFlow approves a connect request and checks the durable
// permission grant: the follow-up connect answers immediately and the
// queries stop being unauthorized.
func TestConnectFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	connected, err := f.client.Connected(context.Background())
	require.NoError(t, err)
	assert.False(t, connected)

	_, err = f.client.GetAccount(context.Background())
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.Unauthorized))

	accounts := make(chan []string, 1)
	errs := make(chan error, 1)
	go func() {
		a, err := f.client.Connect(context.Background())
		accounts <- a
		errs <- err
	}()

	action := f.waitPending(t)
	require.Equal(t, pending.KindConnection, action.Kind)
	_, err = f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)

	got := <-accounts
	require.NoError(t, <-errs)
	account, err := f.wallet.ActiveAccount()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, account.Address().String(), got[0])

	connected, err = f.client.Connected(context.Background())
	require.NoError(t, err)
	assert.True(t, connected)

	address, err := f.client.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, account.Address().String(), address)

	// Connecting again must not park a second action.
	got2, err := f.client.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, got2)
	assert.Empty(t, f.dispatcher.ListPending())

	// Disconnect revokes the grant.
	require.NoError(t, f.client.Disconnect(context.Background()))
	connected, err = f.client.Connected(context.Background())
	require.NoError(t, err)
	assert.False(t, connected)
}

// TestSendTransactionApproved approves a transaction with an explicit
// broadcast result supplied by the surface.
func TestSendTransactionApproved(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	tx := map[string]string{"to": "0x00000000000000000000000000000000deadbeef", "value": "0x1"}
	hashes := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		h, err := f.client.SendTransaction(context.Background(), tx)
		hashes <- h
		errs <- err
	}()

	action := f.waitPending(t)
	require.Equal(t, pending.KindTransaction, action.Kind)

	// Approving without a result must fail; broadcasting is not the
	// dispatcher's job.
	_, err := f.dispatcher.Approve(action.ID, nil)
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.InvalidParams))

	const txHash = "0xfeedface"
	_, err = f.dispatcher.Approve(action.ID, json.RawMessage(`"`+txHash+`"`))
	require.NoError(t, err)

	assert.Equal(t, txHash, <-hashes)
	require.NoError(t, <-errs)
}

// TestSweepExpires parks a request, then sweeps with a clock far in the
// future; the caller gets a timeout error and the action commits as
// expired.
func TestSweepExpires(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	errs := make(chan error, 1)
	go func() {
		_, err := f.client.SignMessage(context.Background(), "stale")
		errs <- err
	}()

	action := f.waitPending(t)
	f.dispatcher.Sweep(time.Now().Add(DefaultStaleAfter + time.Minute))

	err := <-errs
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.Expired))

	got, err := f.queue.Get(action.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusExpired, got.Status)
}

// TestApproveAfterExpiry races a human approval against the sweep: the
// sweep commits first, so the approval is a no-op on the committed state.
func TestApproveAfterExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	go f.client.SignMessage(context.Background(), "late click")

	action := f.waitPending(t)
	f.dispatcher.Sweep(time.Now().Add(DefaultStaleAfter + time.Minute))

	resolved, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusExpired, resolved.Status, "first terminal transition wins")
}

func TestQueryMethods(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	chainID, err := f.client.GetChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", chainID)

	err = f.client.SwitchChain(ctx, "5")
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.NotFound))

	require.NoError(t, f.client.AddChain(ctx, Chain{ChainID: "5", Name: "goerli"}))
	require.NoError(t, f.client.SwitchChain(ctx, "5"))

	chainID, err = f.client.GetChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5", chainID)

	err = f.client.AddChain(ctx, Chain{Name: "no id"})
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.InvalidParams))
}

// TestUnknownMethod sends a raw request with a bogus method name.
func TestUnknownMethod(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	_, err := f.client.Request(context.Background(), "self-destruct")
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.InvalidParams))
}

// TestSignMessageLocked checks that the default signature result fails
// while the account is locked, leaving the action pending for a retry.
func TestSignMessageLocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	go f.client.SignMessage(context.Background(), "locked out")
	action := f.waitPending(t)

	account, err := f.wallet.ActiveAccount()
	require.NoError(t, err)
	require.NoError(t, account.Lock())

	_, err = f.dispatcher.Approve(action.ID, nil)
	require.Error(t, err)
	assert.True(t, wire.IsCode(err, wire.Unauthorized))

	// Still pending; unlock and retry succeeds.
	require.Len(t, f.dispatcher.ListPending(), 1)
	require.NoError(t, account.Unlock(testPass))
	resolved, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusApproved, resolved.Status)
}

// TestBadgeCount subscribes to queue changes and checks the count matches
// the number of pending actions after every transition.
func TestBadgeCount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	var mu sync.Mutex
	var last int
	f.queue.OnChanged(func(pendingCount int) {
		mu.Lock()
		last = pendingCount
		mu.Unlock()
	})
	badge := func() int {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	go f.client.SignMessage(context.Background(), "badge me")
	action := f.waitPending(t)

	// The callback fires outside the queue lock, so poll.
	require.Eventually(t, func() bool { return badge() == 1 },
		time.Second, time.Millisecond)

	_, err := f.dispatcher.Reject(action.ID, "no")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return badge() == 0 },
		time.Second, time.Millisecond)
}

// TestThroughRelay runs the full chain, page client -> relay -> dispatcher,
// to check that the extra hop is transparent to both sides.
func TestThroughRelay(t *testing.T) {
	t.Parallel()

	account, err := ethwallet.DeriveAccount(testSecret, testPass)
	require.NoError(t, err)
	require.NoError(t, account.Unlock(testPass))
	w := ethwallet.NewWallet(account)

	queue, err := pending.NewQueue(memorydb.NewDatabase())
	require.NoError(t, err)
	d, err := New(queue, w, memorydb.NewDatabase(), nil)
	require.NoError(t, err)

	page, relayPage := wire.NewPipeConnPair()
	relayPriv, priv := wire.NewPipeConnPair()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.New(relayPage, relayPriv).Run(ctx)
	go d.ServeConn(ctx, priv)

	c := client.NewClient(page, testOrigin, testTimeouts)
	defer c.Close()

	chainID, err := c.GetChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", chainID)

	errs := make(chan error, 1)
	go func() {
		_, err := c.Connect(ctx)
		errs <- err
	}()
	require.Eventually(t, func() bool {
		return len(d.ListPending()) == 1
	}, 5*time.Second, 5*time.Millisecond)
	_, err = d.Approve(d.ListPending()[0].ID, nil)
	require.NoError(t, err)
	require.NoError(t, <-errs)
}

// TestConnClosedDropsWaiters closes the page connection while a request is
// parked; resolving afterwards must not panic and still commits the
// action.
func TestConnClosedDropsWaiters(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.connect(t)

	go f.client.SignMessage(context.Background(), "going away")
	action := f.waitPending(t)

	f.client.Close()
	// Give ServeConn a moment to drop the connection's waiters.
	time.Sleep(50 * time.Millisecond)

	resolved, err := f.dispatcher.Approve(action.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, pending.StatusApproved, resolved.Status)
}
