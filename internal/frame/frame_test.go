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

package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := NewCodec()
	payload := []byte("hello mailbox")

	encoded, err := codec.Encode(payload, OpcodeBinary)
	require.NoError(t, err)
	require.Len(t, encoded, headerSize+len(payload))

	codec.Feed(encoded)
	decoded, err := codec.Next()
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.Equal(t, OpcodeBinary, decoded.Opcode)
	require.Equal(t, payload, decoded.Payload)
	require.Zero(t, codec.Buffered())

	// nothing left
	decoded, err = codec.Next()
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestEmptyPayload(t *testing.T) {
	codec := NewCodec()
	encoded, err := codec.Encode(nil, OpcodePing)
	require.NoError(t, err)

	codec.Feed(encoded)
	decoded, err := codec.Next()
	require.NoError(t, err)
	require.NotNil(t, decoded)
	require.Equal(t, OpcodePing, decoded.Opcode)
	require.Empty(t, decoded.Payload)
}

func TestPartialFeeding(t *testing.T) {
	payload := bytes.Repeat([]byte("abc123"), 100)
	whole, err := NewCodec().Encode(payload, OpcodeBinary)
	require.NoError(t, err)

	// feeding a frame's bytes in arbitrarily split chunks yields the same
	// decoded frame as feeding it whole
	for _, chunkSize := range []int{1, 2, 3, 7, 64, len(whole) - 1} {
		codec := NewCodec()
		var decoded *Frame
		for offset := 0; offset < len(whole); offset += chunkSize {
			end := offset + chunkSize
			if end > len(whole) {
				end = len(whole)
			}
			codec.Feed(whole[offset:end])

			next, err := codec.Next()
			require.NoError(t, err)
			if next != nil {
				require.Nil(t, decoded, "frame decoded twice with chunk size %d", chunkSize)
				decoded = next
			}
		}
		require.NotNil(t, decoded, "no frame decoded with chunk size %d", chunkSize)
		require.Equal(t, OpcodeBinary, decoded.Opcode)
		require.Equal(t, payload, decoded.Payload)
	}
}

func TestMultipleFramesPerFeed(t *testing.T) {
	codec := NewCodec()
	first, err := codec.Encode([]byte("first"), OpcodeBinary)
	require.NoError(t, err)
	second, err := codec.Encode([]byte("second"), OpcodeBinary)
	require.NoError(t, err)

	codec.Feed(append(first, second...))

	decoded, err := codec.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("first"), decoded.Payload)

	decoded, err = codec.Next()
	require.NoError(t, err)
	require.Equal(t, []byte("second"), decoded.Payload)

	decoded, err = codec.Next()
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestOversizedFrameIsFatal(t *testing.T) {
	small := NewCodec(WithMaxPayloadSize(8))

	encoded, err := NewCodec().Encode(bytes.Repeat([]byte{0x1}, 9), OpcodeBinary)
	require.NoError(t, err)

	small.Feed(encoded)
	decoded, err := small.Next()
	require.ErrorIs(t, err, ErrFrameTooLarge)
	require.Nil(t, decoded)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	codec := NewCodec(WithMaxPayloadSize(4))
	encoded, err := codec.Encode([]byte("too big"), OpcodeBinary)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
	require.Nil(t, encoded)
}

func TestHeaderAloneDecodesNothing(t *testing.T) {
	codec := NewCodec()
	encoded, err := codec.Encode([]byte("payload"), OpcodeBinary)
	require.NoError(t, err)

	codec.Feed(encoded[:headerSize])
	decoded, err := codec.Next()
	require.NoError(t, err)
	require.Nil(t, decoded)
	require.Equal(t, headerSize, codec.Buffered())
}
