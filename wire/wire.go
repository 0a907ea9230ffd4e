// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package wire contains the message envelope that crosses the boundaries
// between the page, the relay and the privileged wallet process, together
// with the channel abstraction the three contexts communicate over.
//
// Exactly two message shapes exist on the wire: a correlated request and its
// reply. Both carry the requestId that ties them together. The envelope is
// JSON so that a page-side runtime can produce and consume it directly.
package wire

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Type discriminates the two message shapes of the protocol.
type Type string

const (
	// Request is a page-originated correlated request.
	Request Type = "REQUEST"
	// Reply answers exactly one Request, matched by requestId.
	Reply Type = "REPLY"
)

// Msg is a single protocol message. A Msg is either a *RequestMsg or a
// *ReplyMsg; both are correlated by ID.
type Msg interface {
	// Type returns the message's envelope type.
	Type() Type
	// ID returns the requestId correlating a request with its reply.
	ID() string
}

// RequestMsg asks the privileged process to perform a wallet operation.
type RequestMsg struct {
	RequestID string            `json:"requestId"`
	Method    string            `json:"method"`
	Params    []json.RawMessage `json:"params"`
	Origin    string            `json:"origin"`
}

// Type returns Request.
func (*RequestMsg) Type() Type { return Request }

// ID returns the request's correlation id.
func (m *RequestMsg) ID() string { return m.RequestID }

// ReplyMsg carries the outcome of a RequestMsg back to the page. Data and
// Error are mutually exclusive, discriminated by Success.
type ReplyMsg struct {
	RequestID string          `json:"requestId"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Type returns Reply.
func (*ReplyMsg) Type() Type { return Reply }

// ID returns the correlation id of the request this reply answers.
func (m *ReplyMsg) ID() string { return m.RequestID }

// envelope is the raw JSON shape of both message types. Success is a pointer
// so that replies always serialize it and requests never do.
type envelope struct {
	Type      Type              `json:"type"`
	RequestID string            `json:"requestId"`
	Method    string            `json:"method,omitempty"`
	Params    []json.RawMessage `json:"params,omitempty"`
	Origin    string            `json:"origin,omitempty"`
	Success   *bool             `json:"success,omitempty"`
	Data      json.RawMessage   `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// errMalformed tags shape violations so that forwarding hops can drop the
// message and keep the channel alive.
var errMalformed = errors.New("malformed envelope")

// IsMalformed reports whether an error returned by Recv or a decode call
// denotes a message of invalid shape, as opposed to a broken channel.
func IsMalformed(err error) bool {
	return errors.Cause(err) == errMalformed
}

// toEnvelope flattens a Msg into its raw wire shape.
func toEnvelope(m Msg) (*envelope, error) {
	switch m := m.(type) {
	case *RequestMsg:
		return &envelope{
			Type:      Request,
			RequestID: m.RequestID,
			Method:    m.Method,
			Params:    m.Params,
			Origin:    m.Origin,
		}, nil
	case *ReplyMsg:
		success := m.Success
		return &envelope{
			Type:      Reply,
			RequestID: m.RequestID,
			Success:   &success,
			Data:      m.Data,
			Error:     m.Error,
		}, nil
	default:
		return nil, errors.Errorf("unknown message type %T", m)
	}
}

// fromEnvelope validates the raw wire shape and converts it into a Msg.
// Shape violations are reported as malformed, see IsMalformed.
func fromEnvelope(e *envelope) (Msg, error) {
	if e.RequestID == "" {
		return nil, errors.WithMessage(errMalformed, "empty requestId")
	}
	switch e.Type {
	case Request:
		if e.Method == "" {
			return nil, errors.WithMessage(errMalformed, "request without method")
		}
		return &RequestMsg{
			RequestID: e.RequestID,
			Method:    e.Method,
			Params:    e.Params,
			Origin:    e.Origin,
		}, nil
	case Reply:
		if e.Success == nil {
			return nil, errors.WithMessage(errMalformed, "reply without success flag")
		}
		return &ReplyMsg{
			RequestID: e.RequestID,
			Success:   *e.Success,
			Data:      e.Data,
			Error:     e.Error,
		}, nil
	default:
		return nil, errors.WithMessagef(errMalformed, "unknown type %q", e.Type)
	}
}

// Marshal serializes a message into its JSON wire form.
func Marshal(m Msg) ([]byte, error) {
	e, err := toEnvelope(m)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	return data, errors.WithMessage(err, "marshaling envelope")
}

// Unmarshal parses and shape-validates a single JSON wire message.
func Unmarshal(data []byte) (Msg, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.WithMessage(errMalformed, err.Error())
	}
	return fromEnvelope(&e)
}

// Encode writes a message to a stream as a single JSON document.
func Encode(m Msg, w io.Writer) error {
	e, err := toEnvelope(m)
	if err != nil {
		return err
	}
	return errors.WithMessage(json.NewEncoder(w).Encode(e), "encoding envelope")
}

// Decode reads the next message from a stream. A shape violation in an
// otherwise well-formed JSON document is reported as malformed and leaves the
// stream aligned on the next document; a syntax or IO error breaks the
// stream.
func Decode(dec *json.Decoder) (Msg, error) {
	var e envelope
	if err := dec.Decode(&e); err != nil {
		return nil, errors.WithMessage(err, "decoding envelope")
	}
	return fromEnvelope(&e)
}
