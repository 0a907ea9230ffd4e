// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package dispatch implements the privileged dispatcher, the only component
// that executes wallet logic. It receives correlated requests from the
// relay, answers non-interactive ones immediately and parks interactive
// ones as pending actions until a human resolves them through the approval
// surface.
package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/db"
	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/pending"
	"github.com/lijinhai255/plasmo-wallet-sub000/wallet"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// Default timing policy. The staleness window bounds how long an approval
// surface can sit on a request; it exists independently of the caller's own
// timeout, which is usually shorter.
const (
	DefaultStaleAfter    = 5 * time.Minute
	DefaultSweepInterval = 30 * time.Second
	DefaultRetention     = 24 * time.Hour
	DefaultGCInterval    = time.Hour
)

// Chain is a network configuration entry of the chain registry.
type Chain struct {
	ChainID string `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl,omitempty"`
}

// Options configures a Dispatcher's timing policy and default chain.
type Options struct {
	StaleAfter    time.Duration
	SweepInterval time.Duration
	Retention     time.Duration
	GCInterval    time.Duration
	DefaultChain  Chain
}

func (o *Options) setDefaults() {
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.GCInterval <= 0 {
		o.GCInterval = DefaultGCInterval
	}
	if o.DefaultChain.ChainID == "" {
		o.DefaultChain = Chain{ChainID: "1", Name: "mainnet"}
	}
}

// Dispatcher owns the wallet state and the pending-action queue. It serves
// any number of page connections concurrently; deferred interactive replies
// are routed back to the connection that carried the original request.
type Dispatcher struct {
	queue  *pending.Queue
	wallet wallet.Wallet
	chains db.Database // chain registry, keyed by chain id
	perms  db.Database // connected origins, keyed by origin
	meta   db.Database // active chain and similar singletons
	opts   Options

	mutex   sync.Mutex
	waiters map[string]wire.Conn // requestId -> connection awaiting a deferred reply
}

const activeChainKey = "active-chain"

// New creates a dispatcher. The database carries the chain registry and
// origin permissions; the pending queue brings its own storage. A nil opts
// selects the default policy.
func New(queue *pending.Queue, w wallet.Wallet, database db.Database, opts *Options) (*Dispatcher, error) {
	if queue == nil || w == nil || database == nil {
		return nil, errors.New("queue, wallet and database must not be nil")
	}

	var o Options
	if opts != nil {
		o = *opts
	}
	o.setDefaults()

	d := &Dispatcher{
		queue:   queue,
		wallet:  w,
		chains:  db.NewTable(database, "chain:"),
		perms:   db.NewTable(database, "perm:"),
		meta:    db.NewTable(database, "meta:"),
		opts:    o,
		waiters: make(map[string]wire.Conn),
	}

	if err := d.seedChains(); err != nil {
		return nil, err
	}
	return d, nil
}

// seedChains installs the default chain on first start.
func (d *Dispatcher) seedChains() error {
	has, err := d.meta.Has(activeChainKey)
	if err != nil {
		return errors.WithMessage(err, "reading active chain")
	}
	if has {
		return nil
	}
	if err := d.putChain(d.opts.DefaultChain); err != nil {
		return err
	}
	return errors.WithMessage(
		d.meta.Put(activeChainKey, d.opts.DefaultChain.ChainID), "seeding active chain")
}

func (d *Dispatcher) putChain(c Chain) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.WithMessage(err, "marshaling chain")
	}
	return errors.WithMessagef(d.chains.PutBytes(c.ChainID, data), "persisting chain %q", c.ChainID)
}

// Queue exposes the dispatcher's pending-action queue, e.g. for badge
// subscriptions.
func (d *Dispatcher) Queue() *pending.Queue { return d.queue }

// Run drives the expiry sweep and garbage collection until the context is
// canceled. Connections are served separately via ServeConn.
func (d *Dispatcher) Run(ctx context.Context) error {
	sweep := time.NewTicker(d.opts.SweepInterval)
	defer sweep.Stop()
	gc := time.NewTicker(d.opts.GCInterval)
	defer gc.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			d.Sweep(time.Now())
		case <-gc.C:
			if removed, err := d.queue.Collect(time.Now().Add(-d.opts.Retention)); err != nil {
				log.WithError(err).Error("garbage collection failed")
			} else if removed > 0 {
				log.Debugf("collected %d resolved actions", removed)
			}
		}
	}
}

// Sweep expires all pending actions older than the staleness window and
// emits their deferred timeout replies.
func (d *Dispatcher) Sweep(now time.Time) {
	expired, err := d.queue.Expire(now.Add(-d.opts.StaleAfter))
	if err != nil {
		log.WithError(err).Error("expiry sweep failed")
	}
	for _, a := range expired {
		d.deferReply(a)
	}
}

// ServeConn serves requests from a single connection until it breaks or the
// context is canceled. Waiters registered by this connection are dropped on
// exit; their pending actions keep existing for audit.
func (d *Dispatcher) ServeConn(ctx context.Context, conn wire.Conn) error {
	defer d.dropWaiters(conn)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		m, err := conn.Recv()
		if wire.IsMalformed(err) {
			log.WithError(err).Debug("dropping malformed message")
			continue
		} else if err != nil {
			return errors.WithMessage(err, "receiving request")
		}

		req, ok := m.(*wire.RequestMsg)
		if !ok {
			log.Debugf("ignoring unexpected %s message", m.Type())
			continue
		}
		d.handle(conn, req)
	}
}

// handle processes one request. Collaborator panics are converted into an
// internal-error reply so that an escaped failure cannot strand the waiting
// caller.
func (d *Dispatcher) handle(conn wire.Conn, req *wire.RequestMsg) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("request handler panicked: %v", r)
			d.reply(conn, req.RequestID, nil, errors.Errorf("%v", r))
		}
	}()

	if wire.Interactive(req.Method) {
		d.handleInteractive(conn, req)
		return
	}
	data, err := d.handleQuery(req)
	d.reply(conn, req.RequestID, data, err)
}

// reply emits an immediate reply. Collaborator errors are converted into a
// success:false reply rather than escaping the message boundary.
func (d *Dispatcher) reply(conn wire.Conn, requestID string, data json.RawMessage, err error) {
	m := &wire.ReplyMsg{RequestID: requestID}
	if err != nil {
		m.Error = asCoded(err).Error()
	} else {
		m.Success = true
		m.Data = data
	}
	if err := conn.Send(m); err != nil {
		log.WithError(err).Debug("dropping reply, connection gone")
	}
}

// deferReply emits the deferred reply for a resolved action, if its
// requester is still listening. If not, the reply is dropped; the page-side
// timeout has already settled the call.
func (d *Dispatcher) deferReply(a *pending.Action) {
	d.mutex.Lock()
	conn, ok := d.waiters[a.RequestID]
	delete(d.waiters, a.RequestID)
	d.mutex.Unlock()

	if !ok {
		log.WithField("action", a.ID).Debug("no requester listening, dropping deferred reply")
		return
	}

	m := &wire.ReplyMsg{RequestID: a.RequestID}
	if a.Status == pending.StatusApproved {
		data, err := resultData(a)
		if err != nil {
			m.Error = asCoded(err).Error()
		} else {
			m.Success = true
			m.Data = data
		}
	} else {
		m.Error = a.Error
	}
	if err := conn.Send(m); err != nil {
		log.WithError(err).Debug("dropping deferred reply, connection gone")
	}
}

// resultData wraps an approved action's result into the reply data shape of
// its kind.
func resultData(a *pending.Action) (json.RawMessage, error) {
	var wrapped interface{}
	switch a.Kind {
	case pending.KindSignature:
		wrapped = map[string]json.RawMessage{"signedMessage": a.Result}
	case pending.KindConnection:
		wrapped = map[string]json.RawMessage{"accounts": a.Result}
	case pending.KindTransaction:
		wrapped = map[string]json.RawMessage{"txHash": a.Result}
	default:
		return nil, errors.Errorf("unknown action kind %q", a.Kind)
	}
	data, err := json.Marshal(wrapped)
	return data, errors.WithMessage(err, "marshaling reply data")
}

// addWaiter registers the connection awaiting the deferred reply for a
// request id.
func (d *Dispatcher) addWaiter(requestID string, conn wire.Conn) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.waiters[requestID] = conn
}

func (d *Dispatcher) removeWaiter(requestID string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	delete(d.waiters, requestID)
}

// dropWaiters removes all waiters bound to a closed connection.
func (d *Dispatcher) dropWaiters(conn wire.Conn) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for id, c := range d.waiters {
		if c == conn {
			delete(d.waiters, id)
		}
	}
}

// asCoded keeps coded errors and wraps everything else as an internal
// error.
func asCoded(err error) *wire.Error {
	if coded, ok := errors.Cause(err).(*wire.Error); ok {
		return coded
	}
	return wire.NewError(wire.Internal, err.Error())
}
