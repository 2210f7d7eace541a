// Package jute owns the binary serialization primitives shared by the live
// wire protocol and the on-disk persistence formats.
//
// Ownership boundary:
// - primitive encode/decode (int, long, bool, buffer, string)
// - vector framing (count-prefixed element sequences)
// - decode-side length limits
package jute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxLength bounds any single buffer, string, or vector count read
// from the stream. Matches the upstream client limit of 1 MiB.
const DefaultMaxLength = 1024 * 1024

var (
	ErrTooLarge  = errors.New("jute: length exceeds limit")
	ErrMalformed = errors.New("jute: malformed value")
	ErrShortRead = errors.New("jute: unexpected end of input")
)

// Encoder writes jute-encoded values to an underlying stream.
// All multi-byte integers are big-endian.
type Encoder struct {
	w   io.Writer
	buf [8]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) WriteBool(v bool) error {
	if v {
		e.buf[0] = 1
	} else {
		e.buf[0] = 0
	}
	_, err := e.w.Write(e.buf[:1])
	return err
}

func (e *Encoder) WriteInt(v int32) error {
	binary.BigEndian.PutUint32(e.buf[:4], uint32(v))
	_, err := e.w.Write(e.buf[:4])
	return err
}

func (e *Encoder) WriteLong(v int64) error {
	binary.BigEndian.PutUint64(e.buf[:8], uint64(v))
	_, err := e.w.Write(e.buf[:8])
	return err
}

// WriteBuffer writes a length-prefixed byte buffer. A nil buffer is encoded
// with length -1 and round-trips as nil on decode.
func (e *Encoder) WriteBuffer(v []byte) error {
	if v == nil {
		return e.WriteInt(-1)
	}
	if err := e.WriteInt(int32(len(v))); err != nil {
		return err
	}
	_, err := e.w.Write(v)
	return err
}

func (e *Encoder) WriteString(v string) error {
	if err := e.WriteInt(int32(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, v)
	return err
}

// WriteVectorLen writes the element count that precedes vector elements.
func (e *Encoder) WriteVectorLen(n int) error {
	return e.WriteInt(int32(n))
}

// Decoder reads jute-encoded values from an underlying stream. MaxLength
// bounds every declared buffer/string/vector length before any allocation.
type Decoder struct {
	r         io.Reader
	buf       [8]byte
	MaxLength int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, MaxLength: DefaultMaxLength}
}

func (d *Decoder) readFull(b []byte) error {
	if _, err := io.ReadFull(d.r, b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortRead
		}
		return err
	}
	return nil
}

func (d *Decoder) ReadBool() (bool, error) {
	if err := d.readFull(d.buf[:1]); err != nil {
		return false, err
	}
	return d.buf[0] != 0, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	if err := d.readFull(d.buf[:1]); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *Decoder) ReadInt() (int32, error) {
	if err := d.readFull(d.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(d.buf[:4])), nil
}

func (d *Decoder) ReadLong() (int64, error) {
	if err := d.readFull(d.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(d.buf[:8])), nil
}

// ReadBuffer reads a length-prefixed byte buffer. Length -1 decodes as nil.
func (d *Decoder) ReadBuffer() ([]byte, error) {
	n, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if int(n) > d.maxLength() {
		return nil, fmt.Errorf("%w: buffer length %d", ErrTooLarge, n)
	}
	b := make([]byte, n)
	if err := d.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrMalformed, n)
	}
	if int(n) > d.maxLength() {
		return "", fmt.Errorf("%w: string length %d", ErrTooLarge, n)
	}
	b := make([]byte, n)
	if err := d.readFull(b); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string is not valid utf-8", ErrMalformed)
	}
	return string(b), nil
}

// ReadVectorLen reads the element count that precedes vector elements.
// The server encodes null vectors as -1; those decode as zero elements.
func (d *Decoder) ReadVectorLen() (int, error) {
	n, err := d.ReadInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	if int(n) > d.maxLength() {
		return 0, fmt.Errorf("%w: vector length %d", ErrTooLarge, n)
	}
	return int(n), nil
}

func (d *Decoder) maxLength() int {
	if d.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return d.MaxLength
}
