// MIT License
//
// Copyright (c) 2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package codec converts in-process message objects to and from opaque CBOR
// payloads. CBOR round-trips the arbitrary nested mappings, sequences,
// strings and numbers that command arguments carry, without requiring a
// schema on either side of the connection.
package codec

import (
	"errors"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrSerialize is returned when a message cannot be encoded.
	ErrSerialize = errors.New("codec: failed to serialize message")

	// ErrDeserialize is returned when a payload cannot be decoded. The
	// consumer loop treats this as a message-level failure, never a crash.
	ErrDeserialize = errors.New("codec: failed to deserialize message")
)

var (
	encOpts = cbor.EncOptions{
		Sort:        cbor.SortNone, // no key sorting, fastest
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnixDynamic,
	}
	decOpts = cbor.DecOptions{
		MaxNestedLevels: 64,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8DecodeInvalid,
		IntDec:          cbor.IntDecConvertSigned,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
	}
)

// Codec encodes and decodes values with tuned CBOR modes. It is stateless
// and safe for concurrent use; a single instance can be shared across
// connections.
type Codec struct {
	encMode cbor.EncMode // immutable after construction, thread-safe
	decMode cbor.DecMode // immutable after construction, thread-safe
}

// New returns a ready-to-use Codec.
func New() *Codec {
	encMode, _ := encOpts.EncMode()
	decMode, _ := decOpts.DecMode()
	return &Codec{encMode: encMode, decMode: decMode}
}

// Serialize encodes message into an opaque byte payload.
func (c *Codec) Serialize(message any) ([]byte, error) {
	if message == nil {
		return nil, ErrSerialize
	}
	data, err := c.encMode.Marshal(message)
	if err != nil {
		return nil, errors.Join(ErrSerialize, err)
	}
	return data, nil
}

// Deserialize decodes a payload produced by Serialize into message, which
// must be a non-nil pointer.
func (c *Codec) Deserialize(data []byte, message any) error {
	if err := c.decMode.Unmarshal(data, message); err != nil {
		return errors.Join(ErrDeserialize, err)
	}
	return nil
}
