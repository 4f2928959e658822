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

// Package frame turns a byte stream into discrete opcode-tagged frames and
// back.
//
// Wire layout (length is big-endian uint32):
//
//	┌──────────┬──────────┬──────────────┐
//	│ opcode   │ length   │ payload      │
//	│ 1 byte   │ 4 bytes  │ length bytes │
//	└──────────┴──────────┴──────────────┘
//
// The codec is stateless across frames except for buffered partial data: feed
// it chunks as they arrive off the socket and pull complete frames out with
// Next. No message boundary is tracked beyond what a single connection's byte
// stream provides.
package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Opcodes carried in the frame header. Only OpcodeBinary frames carry
// application messages; the others are reserved for transport-level control.
const (
	// OpcodeBinary designates a binary application message frame.
	OpcodeBinary byte = 0x2
	// OpcodeClose is reserved for transport-level close signaling.
	OpcodeClose byte = 0x8
	// OpcodePing is reserved for transport-level keep-alive signaling.
	OpcodePing byte = 0x9
)

// DefaultMaxPayloadSize caps a single frame payload at 16 MiB.
const DefaultMaxPayloadSize = 16 << 20

// headerSize is the opcode byte plus the uint32 payload length.
const headerSize = 5

var (
	// ErrFrameTooLarge is returned when a frame header announces a payload
	// larger than the codec's configured maximum. The error is fatal for the
	// connection that produced it.
	ErrFrameTooLarge = errors.New("frame: payload exceeds maximum frame size")

	// ErrPayloadTooLarge is returned by Encode when the payload cannot fit in
	// a single frame.
	ErrPayloadTooLarge = errors.New("frame: payload too large to encode")
)

// Frame is the minimal framed unit on the wire: an opcode tag plus a
// length-delimited payload.
type Frame struct {
	Opcode  byte
	Payload []byte
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxPayloadSize overrides the maximum accepted payload size.
// Values less than 1 are ignored.
func WithMaxPayloadSize(size int) Option {
	return func(c *Codec) {
		if size >= 1 {
			c.maxPayloadSize = size
		}
	}
}

// Codec decodes frames from an incrementally fed byte stream and encodes
// payloads into frames. A Codec instance belongs to a single connection and
// is not safe for concurrent use.
type Codec struct {
	buffer         bytes.Buffer
	maxPayloadSize int
}

// NewCodec creates a Codec with DefaultMaxPayloadSize unless overridden.
func NewCodec(opts ...Option) *Codec {
	codec := &Codec{maxPayloadSize: DefaultMaxPayloadSize}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// Encode wraps payload into a single frame tagged with opcode.
// Returns ErrPayloadTooLarge when the payload exceeds the configured maximum.
func (c *Codec) Encode(payload []byte, opcode byte) ([]byte, error) {
	if len(payload) > c.maxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, headerSize+len(payload))
	out[0] = opcode
	binary.BigEndian.PutUint32(out[1:headerSize], uint32(len(payload)))
	copy(out[headerSize:], payload)
	return out, nil
}

// Feed appends a chunk read off the wire to the codec's internal buffer.
// Call Next afterwards to pull out the frames the chunk completed.
func (c *Codec) Feed(chunk []byte) {
	c.buffer.Write(chunk)
}

// Next returns the next complete frame, or nil when the buffered data does
// not yet hold one. Returns ErrFrameTooLarge when the buffered header
// announces a payload over the maximum; the connection must then be torn
// down since the stream can no longer be re-synchronized.
func (c *Codec) Next() (*Frame, error) {
	data := c.buffer.Bytes()
	if len(data) < headerSize {
		return nil, nil
	}

	payloadLen := int(binary.BigEndian.Uint32(data[1:headerSize]))
	if payloadLen > c.maxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	if len(data) < headerSize+payloadLen {
		return nil, nil
	}

	opcode := data[0]
	c.buffer.Next(headerSize)
	payload := make([]byte, payloadLen)
	if _, err := c.buffer.Read(payload); err != nil {
		// Unreachable: length was checked above.
		return nil, err
	}

	return &Frame{Opcode: opcode, Payload: payload}, nil
}

// Buffered returns the number of bytes retained for the next Feed call.
func (c *Codec) Buffered() int {
	return c.buffer.Len()
}
