// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

// The wallet operations a page may request. Interactive methods require
// human consent and are parked as pending actions by the privileged process;
// the rest are answered immediately.
const (
	MethodConnect         = "connect"
	MethodDisconnect      = "disconnect"
	MethodConnectStatus   = "connect-status"
	MethodGetAccount      = "get-account"
	MethodGetChainID      = "get-chain-id"
	MethodSignMessage     = "sign-message"
	MethodSendTransaction = "send-transaction"
	MethodSwitchChain     = "switch-chain"
	MethodAddChain        = "add-chain"
)

// Interactive reports whether a method requires human consent before it can
// be answered. Interactive methods may take an unbounded amount of time, so
// callers should grant them a longer deadline than query methods.
func Interactive(method string) bool {
	switch method {
	case MethodConnect, MethodSignMessage, MethodSendTransaction:
		return true
	default:
		return false
	}
}
