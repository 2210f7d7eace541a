// Package frame owns the length-prefixed message framing shared by the
// handshake, pipelined requests, and server notifications.
//
// Every message on the stream is a 4-byte big-endian length followed by
// exactly that many body bytes.
package frame

import (
	"encoding/binary"
	"errors"
	"io"
)

const PrefixLen = 4

var (
	ErrFrameTooLarge = errors.New("frame: declared length exceeds limit")
	ErrEmptyFrame    = errors.New("frame: zero-length frame")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxFrameBytes int32
}

func DefaultLimits() Limits {
	return Limits{MaxFrameBytes: 8 * 1024 * 1024}
}

// Read reads one framed message. io.EOF before any prefix byte means the
// stream ended cleanly; a partial prefix or body is io.ErrUnexpectedEOF.
func Read(r io.Reader, limits Limits) ([]byte, error) {
	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := int32(binary.BigEndian.Uint32(prefix[:]))
	if n <= 0 {
		return nil, ErrEmptyFrame
	}
	if n > limits.MaxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}

// Write emits the prefix and body in a single Write call so that two frames
// written to the same stream can never interleave.
func Write(w io.Writer, body []byte, limits Limits) error {
	if len(body) == 0 {
		return ErrEmptyFrame
	}
	if int32(len(body)) > limits.MaxFrameBytes {
		return ErrFrameTooLarge
	}
	out := make([]byte, PrefixLen+len(body))
	binary.BigEndian.PutUint32(out[:PrefixLen], uint32(len(body)))
	copy(out[PrefixLen:], body)
	_, err := w.Write(out)
	return err
}
