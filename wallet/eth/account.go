// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package eth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"

	"github.com/lijinhai255/plasmo-wallet-sub000/wallet"
)

// scrypt parameters for the passphrase digest.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

var _ wallet.Account = (*Account)(nil)

// Account is a single secp256k1 account. A fresh account starts locked.
type Account struct {
	mutex    sync.Mutex
	address  Address
	key      *ecdsa.PrivateKey
	salt     []byte
	check    []byte // scrypt digest of the passphrase
	unlocked bool
}

// NewAccount creates a locked account from a private key, protected by the
// given passphrase.
func NewAccount(key *ecdsa.PrivateKey, passphrase string) (*Account, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.WithMessage(err, "generating salt")
	}
	check, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, errors.WithMessage(err, "deriving passphrase digest")
	}
	return &Account{
		address: Address{addr: crypto.PubkeyToAddress(key.PublicKey)},
		key:     key,
		salt:    salt,
		check:   check,
	}, nil
}

// NewRandomAccount creates a locked account with a fresh random key.
func NewRandomAccount(passphrase string) (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.WithMessage(err, "generating key")
	}
	return NewAccount(key, passphrase)
}

// DeriveAccount derives a locked account from a hex-encoded secret key.
func DeriveAccount(secret, passphrase string) (*Account, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	if err != nil {
		return nil, errors.WithMessage(err, "parsing secret key")
	}
	return NewAccount(key, passphrase)
}

// Address used by this account.
func (a *Account) Address() wallet.Address { return a.address }

// Unlock unlocks this account if the passphrase matches.
func (a *Account) Unlock(password string) error {
	check, err := scrypt.Key([]byte(password), a.salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return errors.WithMessage(err, "deriving passphrase digest")
	}
	if subtle.ConstantTimeCompare(check, a.check) != 1 {
		return errors.New("wrong passphrase")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.unlocked = true
	return nil
}

// Lock locks this account.
func (a *Account) Lock() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.unlocked = false
	return nil
}

// IsUnlocked reports whether the account can currently sign.
func (a *Account) IsUnlocked() bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.unlocked
}

// SignData signs the data with the account key, using the ethereum signed
// message hash so that signatures are not valid transactions.
func (a *Account) SignData(data []byte) ([]byte, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if !a.unlocked {
		return nil, errors.New("account locked")
	}
	return crypto.Sign(SignHash(data), a.key)
}

// SignHash computes the hash that SignData signs for the given data.
func SignHash(data []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(data))
	return crypto.Keccak256([]byte(prefix), data)
}
