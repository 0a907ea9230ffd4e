// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package relay implements the trust-boundary-crossing forwarding hop
// between a page's message channel and the privileged process. It validates
// message shape but never inspects method semantics, and it holds no
// per-request state: if the relay dies mid-flight, the page-side timeout
// covers the loss.
package relay

import (
	"context"

	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// Relay forwards messages verbatim between two connections.
type Relay struct {
	page wire.Conn
	priv wire.Conn
}

// New creates a relay between the page-side and the privileged-side
// connection.
func New(page, priv wire.Conn) *Relay {
	return &Relay{page: page, priv: priv}
}

// Run forwards in both directions until either side breaks or the context
// is canceled. Both connections are closed on return.
func (r *Relay) Run(ctx context.Context) error {
	done := make(chan error, 2)
	go func() { done <- forward(r.page, r.priv) }()
	go func() { done <- forward(r.priv, r.page) }()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-done:
	}

	// Closing both sides unblocks the remaining forwarder.
	r.page.Close()
	r.priv.Close()
	return err
}

// forward pumps messages from src to dst. Malformed messages are dropped,
// everything else is passed through untouched.
func forward(src, dst wire.Conn) error {
	for {
		m, err := src.Recv()
		if wire.IsMalformed(err) {
			log.WithError(err).Debug("relay dropping malformed message")
			continue
		} else if err != nil {
			return errors.WithMessage(err, "relay receive")
		}
		if err := dst.Send(m); err != nil {
			return errors.WithMessage(err, "relay send")
		}
	}
}
