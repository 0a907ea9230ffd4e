// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package wire

import (
	"strings"

	"github.com/pkg/errors"
)

// Code classifies the wallet errors that cross the message boundary. The
// code travels inside a reply's error string so that the page side can
// recover the classification without a shared type system.
type Code string

const (
	// Timeout means no correlated reply arrived within the caller's deadline.
	Timeout Code = "TIMEOUT"
	// Unauthorized means no account is connected or the wallet is locked.
	Unauthorized Code = "UNAUTHORIZED"
	// InvalidParams means the method arguments were malformed.
	InvalidParams Code = "INVALID_PARAMS"
	// NotFound means a pending action id or request id is unknown.
	NotFound Code = "NOT_FOUND"
	// UserRejected means the human explicitly declined the action.
	UserRejected Code = "USER_REJECTED"
	// Expired means the staleness sweep fired before the action was resolved.
	Expired Code = "EXPIRED"
	// Internal means a collaborator failed, e.g. the signing library.
	Internal Code = "INTERNAL_ERROR"
)

// Error is a coded wallet error. Its string form, "CODE: reason", is what a
// reply's error field carries.
type Error struct {
	Code   Code
	Reason string
}

// NewError creates a coded error.
func NewError(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Reason
}

// ErrorFromString recovers a coded error from a reply's error string.
// Strings without a known code prefix become Internal errors.
func ErrorFromString(s string) *Error {
	code, reason, found := strings.Cut(s, ": ")
	if !found {
		code, reason = s, ""
	}
	switch Code(code) {
	case Timeout, Unauthorized, InvalidParams, NotFound, UserRejected, Expired, Internal:
		return &Error{Code: Code(code), Reason: reason}
	default:
		return &Error{Code: Internal, Reason: s}
	}
}

// IsCode reports whether err is a coded error carrying the given code,
// unwrapping any context that was added along the way.
func IsCode(err error, code Code) bool {
	e, ok := errors.Cause(err).(*Error)
	return ok && e.Code == code
}
