// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/pkg/errors"
)

// pipeConn is a connection that sends over a local pipe. It is used to
// connect two components that live in the same process, and for testing.
type pipeConn struct {
	io.ReadCloser
	io.WriteCloser
}

func (c *pipeConn) Close() error {
	r := c.ReadCloser.Close()
	w := c.WriteCloser.Close()
	if r != nil || w != nil {
		return errors.Errorf("error closing pipeConn: ReadCloser: %v WriteCloser: %v", r, w)
	}
	return nil
}

// NewPipeConnPair creates two connection endpoints that are connected via
// in-process pipes.
func NewPipeConnPair() (a Conn, b Conn) {
	ra, wa := io.Pipe()
	rb, wb := io.Pipe()
	return NewIOConn(&pipeConn{ra, wb}), NewIOConn(&pipeConn{rb, wa})
}
