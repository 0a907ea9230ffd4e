// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package client implements the injected provider handed to untrusted page
// code. It turns method calls into correlated requests on the page's
// channel and settles each call with the matching reply or a timeout.
//
// The client only ever reads its own connection, so messages from foreign
// sources can never reach a call; within the connection, a reply is
// consumed at most once and only by the call that registered its
// requestId.
package client

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// Default per-call deadlines. Interactive methods wait on a human, so they
// get a much longer leash than state queries.
const (
	DefaultQueryTimeout       = 10 * time.Second
	DefaultInteractiveTimeout = 60 * time.Second
)

// Timeouts configures the per-method-class call deadlines.
type Timeouts struct {
	Query       time.Duration
	Interactive time.Duration
}

func (t *Timeouts) setDefaults() {
	if t.Query <= 0 {
		t.Query = DefaultQueryTimeout
	}
	if t.Interactive <= 0 {
		t.Interactive = DefaultInteractiveTimeout
	}
}

// Client is the page-side wallet provider. It is safe for concurrent use;
// every call owns an independent requestId and settles independently.
type Client struct {
	conn     wire.Conn
	origin   string
	timeouts Timeouts

	mutex sync.Mutex
	calls map[string]chan *wire.ReplyMsg
	err   error // Set when the receive loop dies.

	closed chan struct{}
}

// NewClient creates a client on the given connection, identifying the page
// by origin. A nil timeouts selects the defaults. The client starts
// receiving immediately.
func NewClient(conn wire.Conn, origin string, timeouts *Timeouts) *Client {
	var t Timeouts
	if timeouts != nil {
		t = *timeouts
	}
	t.setDefaults()

	c := &Client{
		conn:     conn,
		origin:   origin,
		timeouts: t,
		calls:    make(map[string]chan *wire.ReplyMsg),
		closed:   make(chan struct{}),
	}
	go c.recvLoop()
	return c
}

// Close closes the client's connection; all in-flight calls fail.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Request performs a wallet operation and returns the reply data. All
// remote failures surface as returned errors, typically *wire.Error; the
// call never panics for a remote failure.
func (c *Client) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	encoded := make([]json.RawMessage, len(params))
	for i, p := range params {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, errors.WithMessagef(err, "marshaling parameter %d", i)
		}
		encoded[i] = data
	}

	requestID := newRequestID()
	replies := c.register(requestID)
	if replies == nil {
		return nil, errors.New("client closed")
	}

	err := c.conn.Send(&wire.RequestMsg{
		RequestID: requestID,
		Method:    method,
		Params:    encoded,
		Origin:    c.origin,
	})
	if err != nil {
		c.unregister(requestID)
		return nil, errors.WithMessage(err, "sending request")
	}

	timeout := c.timeouts.Query
	if wire.Interactive(method) {
		timeout = c.timeouts.Interactive
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replies:
		if !reply.Success {
			return nil, wire.ErrorFromString(reply.Error)
		}
		return reply.Data, nil
	case <-timer.C:
		// Give up waiting. A late reply for this id is discarded by the
		// receive loop; the underlying pending action keeps existing.
		c.unregister(requestID)
		return nil, wire.NewError(wire.Timeout, method+" timed out")
	case <-ctx.Done():
		c.unregister(requestID)
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errors.WithMessage(c.loopErr(), "connection closed")
	}
}

// recvLoop routes replies to their registered call. Replies with unknown or
// already-consumed requestIds are discarded, as are non-reply messages.
func (c *Client) recvLoop() {
	for {
		m, err := c.conn.Recv()
		if wire.IsMalformed(err) {
			log.WithError(err).Debug("client dropping malformed message")
			continue
		} else if err != nil {
			c.fail(err)
			return
		}

		reply, ok := m.(*wire.ReplyMsg)
		if !ok {
			log.Debugf("client ignoring unexpected %s message", m.Type())
			continue
		}

		c.mutex.Lock()
		ch, ok := c.calls[reply.RequestID]
		// Delete before delivery: a reply is consumed at most once.
		delete(c.calls, reply.RequestID)
		c.mutex.Unlock()

		if !ok {
			log.WithField("requestId", reply.RequestID).
				Debug("discarding late or unknown reply")
			continue
		}
		ch <- reply // Buffered, never blocks.
	}
}

// register creates the reply channel for a fresh requestId. Returns nil if
// the client is already closed.
func (c *Client) register(requestID string) chan *wire.ReplyMsg {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	select {
	case <-c.closed:
		return nil
	default:
	}
	ch := make(chan *wire.ReplyMsg, 1)
	c.calls[requestID] = ch
	return ch
}

func (c *Client) unregister(requestID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.calls, requestID)
}

// fail marks the client broken and unblocks all in-flight calls.
func (c *Client) fail(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.err = err
	c.calls = make(map[string]chan *wire.ReplyMsg)
	close(c.closed)
}

func (c *Client) loopErr() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.err
}

// newRequestID produces an id that is collision-resistant for the lifetime
// of the page: wall-clock prefix plus random suffix.
func newRequestID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()
}
