// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/pending"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// handleQuery executes a non-interactive method against the current wallet
// state and returns the reply data.
func (d *Dispatcher) handleQuery(req *wire.RequestMsg) (json.RawMessage, error) {
	switch req.Method {
	case wire.MethodConnectStatus:
		return d.connectStatus(req.Origin)
	case wire.MethodGetAccount:
		return d.getAccount(req.Origin)
	case wire.MethodGetChainID:
		return d.getChainID()
	case wire.MethodDisconnect:
		return d.disconnect(req.Origin)
	case wire.MethodSwitchChain:
		return d.switchChain(req.Params)
	case wire.MethodAddChain:
		return d.addChain(req.Params)
	default:
		return nil, wire.NewError(wire.InvalidParams, "unsupported method "+req.Method)
	}
}

func (d *Dispatcher) connectStatus(origin string) (json.RawMessage, error) {
	connected, err := d.connected(origin)
	if err != nil {
		return nil, err
	}
	return marshalData(map[string]bool{"connected": connected})
}

func (d *Dispatcher) getAccount(origin string) (json.RawMessage, error) {
	connected, err := d.connected(origin)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, wire.NewError(wire.Unauthorized, "not connected")
	}
	account, err := d.wallet.ActiveAccount()
	if err != nil {
		return nil, wire.NewError(wire.Unauthorized, "not connected")
	}
	return marshalData(map[string]string{"address": account.Address().String()})
}

func (d *Dispatcher) getChainID() (json.RawMessage, error) {
	chainID, err := d.meta.Get(activeChainKey)
	if err != nil {
		return nil, errors.WithMessage(err, "reading active chain")
	}
	return marshalData(map[string]string{"chainId": chainID})
}

func (d *Dispatcher) disconnect(origin string) (json.RawMessage, error) {
	if err := d.perms.Delete(origin); err != nil {
		return nil, errors.WithMessage(err, "revoking permission")
	}
	log.WithField("origin", origin).Debug("origin disconnected")
	return marshalData(map[string]bool{"connected": false})
}

func (d *Dispatcher) switchChain(params []json.RawMessage) (json.RawMessage, error) {
	var chainID string
	if err := param(params, 0, &chainID); err != nil {
		return nil, err
	}
	has, err := d.chains.Has(chainID)
	if err != nil {
		return nil, errors.WithMessage(err, "reading chain registry")
	}
	if !has {
		return nil, wire.NewError(wire.NotFound, "unknown chain "+chainID)
	}
	if err := d.meta.Put(activeChainKey, chainID); err != nil {
		return nil, errors.WithMessage(err, "switching chain")
	}
	return marshalData(map[string]string{"chainId": chainID})
}

func (d *Dispatcher) addChain(params []json.RawMessage) (json.RawMessage, error) {
	var chain Chain
	if err := param(params, 0, &chain); err != nil {
		return nil, err
	}
	if chain.ChainID == "" || chain.Name == "" {
		return nil, wire.NewError(wire.InvalidParams, "chain needs chainId and name")
	}
	if err := d.putChain(chain); err != nil {
		return nil, err
	}
	return marshalData(map[string]string{"chainId": chain.ChainID})
}

// handleInteractive parks a consent-requiring method as a pending action.
// The reply is deferred until the action reaches a terminal state.
func (d *Dispatcher) handleInteractive(conn wire.Conn, req *wire.RequestMsg) {
	if req.Origin == "" {
		d.reply(conn, req.RequestID, nil, wire.NewError(wire.InvalidParams, "missing origin"))
		return
	}

	var kind pending.Kind
	var payload interface{}

	switch req.Method {
	case wire.MethodConnect:
		connected, err := d.connected(req.Origin)
		if err != nil {
			d.reply(conn, req.RequestID, nil, err)
			return
		}
		if connected {
			// Already approved earlier; answer without bothering the human.
			data, err := d.accountsData()
			d.reply(conn, req.RequestID, data, err)
			return
		}
		kind = pending.KindConnection
		payload = map[string]string{"origin": req.Origin}

	case wire.MethodSignMessage:
		if err := d.requireConnected(req.Origin); err != nil {
			d.reply(conn, req.RequestID, nil, err)
			return
		}
		var message string
		if err := param(req.Params, 0, &message); err != nil {
			d.reply(conn, req.RequestID, nil, err)
			return
		}
		kind = pending.KindSignature
		payload = map[string]string{"message": message, "origin": req.Origin}

	case wire.MethodSendTransaction:
		if err := d.requireConnected(req.Origin); err != nil {
			d.reply(conn, req.RequestID, nil, err)
			return
		}
		var tx json.RawMessage
		if err := param(req.Params, 0, &tx); err != nil {
			d.reply(conn, req.RequestID, nil, err)
			return
		}
		kind = pending.KindTransaction
		payload = map[string]interface{}{"transaction": tx, "origin": req.Origin}

	default:
		d.reply(conn, req.RequestID, nil, wire.NewError(wire.InvalidParams, "unsupported method "+req.Method))
		return
	}

	payloadData, err := json.Marshal(payload)
	if err != nil {
		d.reply(conn, req.RequestID, nil, errors.WithMessage(err, "marshaling payload"))
		return
	}

	action := &pending.Action{
		ID:        pending.NewID(),
		Kind:      kind,
		RequestID: req.RequestID,
		Origin:    req.Origin,
		Payload:   payloadData,
		Status:    pending.StatusPending,
		CreatedAt: time.Now(),
	}

	// Register the waiter before enqueueing, so a resolution racing the
	// enqueue still finds the requester.
	d.addWaiter(req.RequestID, conn)
	if err := d.queue.Add(action); err != nil {
		d.removeWaiter(req.RequestID)
		d.reply(conn, req.RequestID, nil, err)
		return
	}
	log.WithFields(log.Fields{"action": action.ID, "method": req.Method}).
		Debug("request parked for approval")
}

func (d *Dispatcher) connected(origin string) (bool, error) {
	if origin == "" {
		return false, nil
	}
	connected, err := d.perms.Has(origin)
	return connected, errors.WithMessage(err, "reading permissions")
}

func (d *Dispatcher) requireConnected(origin string) error {
	connected, err := d.connected(origin)
	if err != nil {
		return err
	}
	if !connected {
		return wire.NewError(wire.Unauthorized, "not connected")
	}
	return nil
}

// accountsData marshals the wallet's account addresses, the data shape of a
// successful connect.
func (d *Dispatcher) accountsData() (json.RawMessage, error) {
	account, err := d.wallet.ActiveAccount()
	if err != nil {
		return nil, wire.NewError(wire.Unauthorized, "not connected")
	}
	return marshalData(map[string][]string{"accounts": {account.Address().String()}})
}

func marshalData(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	return data, errors.WithMessage(err, "marshaling reply data")
}

// param decodes the i-th method parameter into dst.
func param(params []json.RawMessage, i int, dst interface{}) error {
	if i >= len(params) {
		return wire.NewError(wire.InvalidParams, "missing parameter")
	}
	if err := json.Unmarshal(params[i], dst); err != nil {
		return wire.NewError(wire.InvalidParams, err.Error())
	}
	return nil
}
