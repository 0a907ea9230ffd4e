// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Conn is one end of a duplex message channel between two execution
// contexts. Send and Recv do not have to be re-entrancy-safe, but calls to
// Close that happen in other threads must interrupt ongoing Send and Recv
// calls.
type Conn interface {
	// Recv receives the next message. A malformed message is reported via an
	// error satisfying IsMalformed and leaves the connection usable. Any
	// other error means the connection is broken and closed.
	Recv() (Msg, error)
	// Send sends a message. If an error occurs, the connection closes
	// itself.
	Send(Msg) error
	// Close closes the connection.
	Close() error
}

var _ Conn = (*ioConn)(nil)

// ioConn is a connection that communicates its messages as a JSON document
// stream over an io.ReadWriteCloser.
type ioConn struct {
	sending sync.Mutex // Serializes concurrent Send calls.
	conn    io.ReadWriteCloser
	enc     *json.Encoder
	dec     *json.Decoder
}

// NewIOConn creates a message connection from a byte stream.
func NewIOConn(conn io.ReadWriteCloser) Conn {
	return &ioConn{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

func (c *ioConn) Send(m Msg) error {
	e, err := toEnvelope(m)
	if err != nil {
		return err
	}

	c.sending.Lock()
	defer c.sending.Unlock()
	if err := c.enc.Encode(e); err != nil {
		c.conn.Close()
		return errors.WithMessage(err, "encoding envelope")
	}
	return nil
}

func (c *ioConn) Recv() (Msg, error) {
	var e envelope
	if err := c.dec.Decode(&e); err != nil {
		c.conn.Close()
		return nil, errors.WithMessage(err, "decoding envelope")
	}
	// Shape violations keep the stream aligned, so do not close.
	return fromEnvelope(&e)
}

func (c *ioConn) Close() error {
	return c.conn.Close()
}
