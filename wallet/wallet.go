// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package wallet defines the account abstraction the privileged dispatcher
// signs with. The actual cryptography is delegated to implementations; the
// dispatcher only ever sees these interfaces, which keeps the crypto
// collaborator swappable in tests.
package wallet

// Wallet represents the accounts available to the privileged process.
type Wallet interface {
	// Accounts returns all accounts held by this wallet.
	Accounts() []Account

	// Contains checks whether this wallet holds the given account.
	Contains(a Account) bool

	// ActiveAccount returns the account used to serve page requests.
	// Returns an error if the wallet holds no accounts.
	ActiveAccount() (Account, error)
}
