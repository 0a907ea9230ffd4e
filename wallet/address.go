// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wallet

import "fmt"

// Address represents an account address.
type Address interface {
	// String converts this address to its canonical string form.
	fmt.Stringer
	// Bytes returns the bytes representation of this address.
	Bytes() []byte
	// Equals checks the equality of two addresses.
	Equals(Address) bool
}
