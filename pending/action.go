// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package pending implements the durable queue of wallet operations that
// await explicit human consent. An action's lifecycle is independent of any
// approval UI being open: it is persisted at creation and mutated exactly
// once, by the first terminal transition that reaches it.
package pending

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an Action. All states except
// StatusPending are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status permits no further transition.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

// Kind is the category of consent an Action asks for.
type Kind string

const (
	KindSignature   Kind = "signature"
	KindConnection  Kind = "connection"
	KindTransaction Kind = "transaction"
)

// Action is a durable record of a wallet operation requiring human consent.
// RequestID and Origin explicitly link the action back to the correlated
// request that created it, so the deferred reply never has to be re-derived
// by scanning.
type Action struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	RequestID string          `json:"requestId"`
	Origin    string          `json:"origin"`
	Payload   json.RawMessage `json:"payload"`
	Status    Status          `json:"status"`
	// Result is set only on approval, Error only on rejection or expiry.
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	ResolvedAt time.Time       `json:"resolvedAt,omitempty"`
}
