// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package eth implements the wallet interfaces on secp256k1 keys using the
// go-ethereum crypto primitives. Accounts lock and unlock with a
// passphrase; the passphrase check is an scrypt-derived digest so the
// cleartext passphrase is never retained.
package eth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/lijinhai255/plasmo-wallet-sub000/wallet"
)

var _ wallet.Wallet = (*Wallet)(nil)

// Wallet holds a fixed set of accounts. The first account is the active
// one.
type Wallet struct {
	accounts []*Account
}

// NewWallet creates a wallet over the given accounts.
func NewWallet(accounts ...*Account) *Wallet {
	return &Wallet{accounts: accounts}
}

// Accounts returns all accounts held by this wallet.
func (w *Wallet) Accounts() []wallet.Account {
	accounts := make([]wallet.Account, len(w.accounts))
	for i, account := range w.accounts {
		accounts[i] = account
	}
	return accounts
}

// Contains checks whether this wallet holds the given account.
func (w *Wallet) Contains(a wallet.Account) bool {
	if a == nil {
		return false
	}
	for _, account := range w.accounts {
		if account.Address().Equals(a.Address()) {
			return true
		}
	}
	return false
}

// ActiveAccount returns the wallet's first account.
func (w *Wallet) ActiveAccount() (wallet.Account, error) {
	if len(w.accounts) == 0 {
		return nil, errors.New("wallet holds no accounts")
	}
	return w.accounts[0], nil
}

var _ wallet.Address = Address{}

// Address wraps an ethereum address.
type Address struct {
	addr common.Address
}

// String returns the checksummed hex form of the address.
func (a Address) String() string { return a.addr.Hex() }

// Bytes returns the 20-byte address.
func (a Address) Bytes() []byte { return a.addr.Bytes() }

// Equals checks the equality of two addresses.
func (a Address) Equals(other wallet.Address) bool {
	o, ok := other.(Address)
	return ok && a.addr == o.addr
}
