// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wallet

// Account represents a single account.
type Account interface {
	// Address used by this account.
	Address() Address

	// Unlock unlocks this account with the given passphrase.
	Unlock(password string) error

	// Lock locks this account. Signing a locked account fails.
	Lock() error

	// IsUnlocked reports whether the account can currently sign.
	IsUnlocked() bool

	// SignData requests a signature over the given data from this account.
	// It returns the signature or an error; a locked account refuses to
	// sign.
	SignData(data []byte) ([]byte, error)
}
