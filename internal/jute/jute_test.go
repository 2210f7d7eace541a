package jute

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.WriteInt(-42); err != nil {
		t.Fatalf("write int: %v", err)
	}
	if err := enc.WriteLong(1 << 40); err != nil {
		t.Fatalf("write long: %v", err)
	}
	if err := enc.WriteBool(true); err != nil {
		t.Fatalf("write bool: %v", err)
	}
	if err := enc.WriteString("/zk/node"); err != nil {
		t.Fatalf("write string: %v", err)
	}
	if err := enc.WriteBuffer([]byte{0xde, 0xad}); err != nil {
		t.Fatalf("write buffer: %v", err)
	}

	dec := NewDecoder(&buf)
	if v, err := dec.ReadInt(); err != nil || v != -42 {
		t.Fatalf("read int: v=%d err=%v", v, err)
	}
	if v, err := dec.ReadLong(); err != nil || v != 1<<40 {
		t.Fatalf("read long: v=%d err=%v", v, err)
	}
	if v, err := dec.ReadBool(); err != nil || !v {
		t.Fatalf("read bool: v=%v err=%v", v, err)
	}
	if v, err := dec.ReadString(); err != nil || v != "/zk/node" {
		t.Fatalf("read string: v=%q err=%v", v, err)
	}
	if v, err := dec.ReadBuffer(); err != nil || !bytes.Equal(v, []byte{0xde, 0xad}) {
		t.Fatalf("read buffer: v=%v err=%v", v, err)
	}
}

func TestIntIsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteInt(0x01020304); err != nil {
		t.Fatalf("write int: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoding mismatch: got=%x want=%x", buf.Bytes(), want)
	}
}

func TestNullBufferRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteBuffer(nil); err != nil {
		t.Fatalf("write nil buffer: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("nil buffer should encode as -1, got %x", buf.Bytes())
	}
	v, err := NewDecoder(&buf).ReadBuffer()
	if err != nil {
		t.Fatalf("read nil buffer: %v", err)
	}
	if v != nil {
		t.Fatalf("nil buffer should decode as nil, got %v", v)
	}
}

func TestEmptyBufferStaysEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).WriteBuffer([]byte{}); err != nil {
		t.Fatalf("write empty buffer: %v", err)
	}
	v, err := NewDecoder(&buf).ReadBuffer()
	if err != nil {
		t.Fatalf("read empty buffer: %v", err)
	}
	if v == nil || len(v) != 0 {
		t.Fatalf("empty buffer should decode as empty, got %v", v)
	}
}

func TestNegativeStringLengthIsMalformed(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	if _, err := dec.ReadString(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestOversizedLengthRejectedBeforeAllocation(t *testing.T) {
	// Declares a 256 MiB string with no bytes behind it.
	dec := NewDecoder(bytes.NewReader([]byte{0x10, 0x00, 0x00, 0x00}))
	if _, err := dec.ReadString(); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	dec = NewDecoder(bytes.NewReader([]byte{0x10, 0x00, 0x00, 0x00}))
	if _, err := dec.ReadBuffer(); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestNullVectorLenDecodesAsZero(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	n, err := dec.ReadVectorLen()
	if err != nil {
		t.Fatalf("read vector len: %v", err)
	}
	if n != 0 {
		t.Fatalf("null vector should decode as zero elements, got %d", n)
	}
}

func TestTruncatedInputIsShortRead(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{0x00, 0x00}))
	if _, err := dec.ReadInt(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}
