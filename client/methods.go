// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package client

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/wire"
)

// Typed wrappers around Request, mirroring the provider API a page sees.

// Connect asks for a connection and returns the granted account addresses.
func (c *Client) Connect(ctx context.Context) ([]string, error) {
	data, err := c.Request(ctx, wire.MethodConnect)
	if err != nil {
		return nil, err
	}
	var result struct {
		Accounts []string `json:"accounts"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.WithMessage(err, "unmarshaling connect reply")
	}
	return result.Accounts, nil
}

// Disconnect revokes this page's connection.
func (c *Client) Disconnect(ctx context.Context) error {
	_, err := c.Request(ctx, wire.MethodDisconnect)
	return err
}

// Connected reports whether this page currently holds a connection.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	data, err := c.Request(ctx, wire.MethodConnectStatus)
	if err != nil {
		return false, err
	}
	var result struct {
		Connected bool `json:"connected"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return false, errors.WithMessage(err, "unmarshaling status reply")
	}
	return result.Connected, nil
}

// GetAccount returns the active account's address.
func (c *Client) GetAccount(ctx context.Context) (string, error) {
	data, err := c.Request(ctx, wire.MethodGetAccount)
	if err != nil {
		return "", err
	}
	var result struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.WithMessage(err, "unmarshaling account reply")
	}
	return result.Address, nil
}

// GetChainID returns the active chain id.
func (c *Client) GetChainID(ctx context.Context) (string, error) {
	data, err := c.Request(ctx, wire.MethodGetChainID)
	if err != nil {
		return "", err
	}
	var result struct {
		ChainID string `json:"chainId"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.WithMessage(err, "unmarshaling chain reply")
	}
	return result.ChainID, nil
}

// SignMessage asks for a signature over the message; the call waits for
// human approval.
func (c *Client) SignMessage(ctx context.Context, message string) (string, error) {
	data, err := c.Request(ctx, wire.MethodSignMessage, message)
	if err != nil {
		return "", err
	}
	var result struct {
		SignedMessage string `json:"signedMessage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.WithMessage(err, "unmarshaling signature reply")
	}
	return result.SignedMessage, nil
}

// SendTransaction submits a transaction for approval and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, tx interface{}) (string, error) {
	data, err := c.Request(ctx, wire.MethodSendTransaction, tx)
	if err != nil {
		return "", err
	}
	var result struct {
		TxHash string `json:"txHash"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errors.WithMessage(err, "unmarshaling transaction reply")
	}
	return result.TxHash, nil
}

// SwitchChain makes a registered chain the active one.
func (c *Client) SwitchChain(ctx context.Context, chainID string) error {
	_, err := c.Request(ctx, wire.MethodSwitchChain, chainID)
	return err
}

// AddChain registers a chain configuration.
func (c *Client) AddChain(ctx context.Context, chain interface{}) error {
	_, err := c.Request(ctx, wire.MethodAddChain, chain)
	return err
}
