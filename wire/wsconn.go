// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var _ Conn = (*wsConn)(nil)

// wsConn is a connection that communicates its messages over a websocket.
// Websockets are message-framed, so a malformed envelope does not corrupt
// the stream and the connection stays usable.
type wsConn struct {
	sending sync.Mutex // Serializes concurrent Send calls.
	conn    *websocket.Conn
}

// NewWSConn creates a message connection from a websocket.
func NewWSConn(conn *websocket.Conn) Conn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Send(m Msg) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}

	c.sending.Lock()
	defer c.sending.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.conn.Close()
		return errors.WithMessage(err, "writing websocket message")
	}
	return nil
}

func (c *wsConn) Recv() (Msg, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.conn.Close()
		return nil, errors.WithMessage(err, "reading websocket message")
	}
	return Unmarshal(data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
