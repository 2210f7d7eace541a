package persistence

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/zkctl/internal/jute"
	"github.com/danmuck/zkctl/internal/proto"
)

func txnlogHeader(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	enc := jute.NewEncoder(buf)
	if err := (&FileHeader{Magic: TxnlogMagic, Version: FormatVersion, DBID: 1}).WriteTo(enc); err != nil {
		t.Fatalf("write header: %v", err)
	}
}

func sampleTxn(zxid int64) *proto.Txn {
	return &proto.Txn{
		Header: proto.TxnHeader{ClientID: 0x16f00ab, Cxid: int32(zxid), Zxid: zxid, Time: 1700000000000 + zxid},
		Op:     proto.OpCreate,
		Body: &proto.CreateTxn{
			Path: "/seq", Data: []byte("d"), ACLs: proto.WorldACL(proto.PermAll), ParentCVersion: 1,
		},
	}
}

func TestTxnlogIteration(t *testing.T) {
	var buf bytes.Buffer
	txnlogHeader(t, &buf)
	for _, zxid := range []int64{0x101, 0x102, 0x103} {
		if err := WriteTxn(&buf, sampleTxn(zxid)); err != nil {
			t.Fatalf("write txn: %v", err)
		}
	}
	// Preallocated tail: zero length ends the written region.
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(make([]byte, 64))

	tr, err := OpenTxnlog(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open txnlog: %v", err)
	}
	var zxids []int64
	for {
		txn, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		zxids = append(zxids, txn.Header.Zxid)
	}
	if len(zxids) != 3 || zxids[0] != 0x101 || zxids[2] != 0x103 {
		t.Fatalf("unexpected zxids: %#x", zxids)
	}
	// Terminal: stays EOF.
	if _, err := tr.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after end, got %v", err)
	}
}

func TestTxnlogChecksumFlipIsCorruption(t *testing.T) {
	var buf bytes.Buffer
	txnlogHeader(t, &buf)
	if err := WriteTxn(&buf, sampleTxn(0x101)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	if err := WriteTxn(&buf, sampleTxn(0x102)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	raw := buf.Bytes()
	// Flip one bit of the second entry's trailing checksum.
	raw[len(raw)-1] ^= 0x01

	tr, err := OpenTxnlog(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open txnlog: %v", err)
	}
	if _, err := tr.Next(); err != nil {
		t.Fatalf("first entry should be clean: %v", err)
	}
	_, err = tr.Next()
	if !errors.Is(err, ErrCorruptEntry) {
		t.Fatalf("expected ErrCorruptEntry, got %v", err)
	}
	// Iteration stops after detected corruption.
	if _, err := tr.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after corruption, got %v", err)
	}
}

func TestTxnlogTruncatedFinalEntryEndsCleanly(t *testing.T) {
	var buf bytes.Buffer
	txnlogHeader(t, &buf)
	if err := WriteTxn(&buf, sampleTxn(0x101)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	var entry bytes.Buffer
	if err := WriteTxn(&entry, sampleTxn(0x102)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	// Keep the declared length but drop most of the body.
	buf.Write(entry.Bytes()[:8])

	tr, err := OpenTxnlog(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open txnlog: %v", err)
	}
	if _, err := tr.Next(); err != nil {
		t.Fatalf("first entry: %v", err)
	}
	if _, err := tr.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("truncated final entry should end cleanly, got %v", err)
	}
}

func TestTxnlogOutOfOrderZxidRejected(t *testing.T) {
	var buf bytes.Buffer
	txnlogHeader(t, &buf)
	if err := WriteTxn(&buf, sampleTxn(0x200)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	if err := WriteTxn(&buf, sampleTxn(0x150)); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	tr, err := OpenTxnlog(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open txnlog: %v", err)
	}
	if _, err := tr.Next(); err != nil {
		t.Fatalf("first entry: %v", err)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrOutOfOrderEntry) {
		t.Fatalf("expected ErrOutOfOrderEntry, got %v", err)
	}
}

func TestTxnlogRejectsWrongMagic(t *testing.T) {
	var buf bytes.Buffer
	enc := jute.NewEncoder(&buf)
	if err := (&FileHeader{Magic: SnapMagic, Version: FormatVersion}).WriteTo(enc); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := OpenTxnlog(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestFindTxnlogPathsCoversSnapshotZxid(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"log.100", "log.200", "log.300", "snapshot.250", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	paths, err := FindTxnlogPaths(dir, 0x250)
	if err != nil {
		t.Fatalf("find txnlog paths: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 segments, got %v", paths)
	}
	if filepath.Base(paths[0]) != "log.200" || filepath.Base(paths[1]) != "log.300" {
		t.Fatalf("unexpected segments: %v", paths)
	}

	if _, err := FindTxnlogPaths(dir, 0x50); err == nil {
		t.Fatalf("expected error when no segment covers the zxid")
	}
}

func TestZxidFromFilename(t *testing.T) {
	if zxid, ok := ZxidFromFilename("log.200000001", "log."); !ok || zxid != 0x200000001 {
		t.Fatalf("zxid=%#x ok=%v", zxid, ok)
	}
	if _, ok := ZxidFromFilename("log.", "log."); ok {
		t.Fatalf("empty suffix should not parse")
	}
	if _, ok := ZxidFromFilename("snapshot.abc", "log."); ok {
		t.Fatalf("prefix mismatch should not parse")
	}
}
