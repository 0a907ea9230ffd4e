// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverConn := make(chan Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConn <- NewWSConn(ws)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(ws)
	defer client.Close()

	server := <-serverConn
	defer server.Close()

	req := &RequestMsg{RequestID: "ws1", Method: MethodConnectStatus, Origin: "https://dapp.example"}
	require.NoError(t, client.Send(req))
	m, err := server.Recv()
	require.NoError(t, err)
	assert.Equal(t, req, m)

	reply := &ReplyMsg{RequestID: "ws1", Success: true, Data: json.RawMessage(`{"connected":false}`)}
	require.NoError(t, server.Send(reply))
	m, err = client.Recv()
	require.NoError(t, err)
	assert.Equal(t, reply, m)
}

// TestWSConn_MalformedKeepsStream verifies that websocket framing lets the
// connection survive a malformed envelope.
func TestWSConn_MalformedKeepsStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverWS := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverWS <- ws
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := NewWSConn(ws)
	defer client.Close()

	raw := <-serverWS
	defer raw.Close()

	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte(`{"type":"REPLY","requestId":"x"}`)))
	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte(`{"type":"REPLY","requestId":"x","success":true}`)))

	_, err = client.Recv()
	require.Error(t, err)
	assert.True(t, IsMalformed(err))

	m, err := client.Recv()
	require.NoError(t, err)
	assert.Equal(t, "x", m.ID())
}
