// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/log"
	"github.com/lijinhai255/plasmo-wallet-sub000/pending"
	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// This file is the human-approval surface: the only API through which a
// person resolves pending actions. Resolving an already-terminal action is
// a no-op returning the committed state, so duplicate clicks and races with
// the expiry sweep are harmless.

// ListPending returns the still-pending actions, oldest first.
func (d *Dispatcher) ListPending() []*pending.Action {
	return d.queue.Pending()
}

// Approve resolves a pending action as approved and emits the deferred
// reply to the original requester, if it is still listening.
//
// For signature actions a nil result makes the dispatcher sign the parked
// message with the active account. For connection actions a nil result is
// filled with the wallet's account list, and the origin is durably granted
// the connection permission. Transaction approvals must carry the broadcast
// result.
func (d *Dispatcher) Approve(id string, result json.RawMessage) (*pending.Action, error) {
	a, err := d.queue.Get(id)
	if err != nil {
		return nil, err
	}

	if result == nil {
		result, err = d.defaultResult(a)
		if err != nil {
			return nil, err
		}
	}

	resolved, applied, err := d.queue.Approve(id, result)
	if err != nil {
		return nil, err
	}
	if !applied {
		return resolved, nil
	}

	if resolved.Kind == pending.KindConnection {
		if err := d.grant(resolved.Origin); err != nil {
			log.WithError(err).Error("persisting connection permission failed")
		}
	}
	d.deferReply(resolved)
	return resolved, nil
}

// Reject resolves a pending action as rejected and emits the deferred
// error reply.
func (d *Dispatcher) Reject(id, reason string) (*pending.Action, error) {
	resolved, applied, err := d.queue.Reject(id, reason)
	if err != nil {
		return nil, err
	}
	if applied {
		d.deferReply(resolved)
	}
	return resolved, nil
}

// defaultResult computes the approval result when the surface supplies
// none.
func (d *Dispatcher) defaultResult(a *pending.Action) (json.RawMessage, error) {
	switch a.Kind {
	case pending.KindSignature:
		return d.signPayload(a)
	case pending.KindConnection:
		account, err := d.wallet.ActiveAccount()
		if err != nil {
			return nil, wire.NewError(wire.Internal, "wallet holds no accounts")
		}
		return marshalData([]string{account.Address().String()})
	case pending.KindTransaction:
		return nil, wire.NewError(wire.InvalidParams,
			"transaction approval requires a result")
	default:
		return nil, errors.Errorf("unknown action kind %q", a.Kind)
	}
}

// signPayload signs the parked message with the active account. The action
// stays pending if signing fails, so the human can unlock and retry.
func (d *Dispatcher) signPayload(a *pending.Action) (json.RawMessage, error) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(a.Payload, &payload); err != nil {
		return nil, errors.WithMessage(err, "unmarshaling signature payload")
	}

	account, err := d.wallet.ActiveAccount()
	if err != nil {
		return nil, wire.NewError(wire.Unauthorized, "not connected")
	}
	if !account.IsUnlocked() {
		return nil, wire.NewError(wire.Unauthorized, "account locked")
	}
	sig, err := account.SignData([]byte(payload.Message))
	if err != nil {
		return nil, wire.NewError(wire.Internal, err.Error())
	}
	return marshalData(hexutil.Encode(sig))
}

func (d *Dispatcher) grant(origin string) error {
	return errors.WithMessagef(
		d.perms.Put(origin, time.Now().UTC().Format(time.RFC3339)),
		"granting permission to %q", origin)
}
