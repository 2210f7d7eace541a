package persistence

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/zkctl/internal/frame"
	"github.com/danmuck/zkctl/internal/jute"
	"github.com/danmuck/zkctl/internal/proto"
)

// TxnReader iterates the transactions of one log segment lazily. Each entry
// on disk is a 4-byte big-endian length, the transaction bytes, and a
// trailing Adler-32 checksum over those bytes.
//
// Log segments are preallocated, so a zero length marks the end of the
// written region. A final entry cut short by a crash ends iteration cleanly;
// a checksum mismatch on a complete entry is detected corruption.
type TxnReader struct {
	r      *bufio.Reader
	header FileHeader
	offset int64
	last   int64
	done   bool
}

// OpenTxnlog validates the segment header and positions the reader at the
// first transaction.
func OpenTxnlog(r io.Reader) (*TxnReader, error) {
	br := bufio.NewReader(r)
	dec := jute.NewDecoder(br)
	tr := &TxnReader{r: br}
	if err := tr.header.ReadFrom(dec); err != nil {
		return nil, fmt.Errorf("txnlog header: %w", err)
	}
	if err := tr.header.validate(TxnlogMagic); err != nil {
		return nil, err
	}
	tr.offset = 16 // magic + version + dbid
	return tr, nil
}

// Header returns the validated segment header.
func (tr *TxnReader) Header() FileHeader {
	return tr.header
}

// Offset reports the byte offset of the next entry, for resuming a parse
// after a reported failure.
func (tr *TxnReader) Offset() int64 {
	return tr.offset
}

// Next returns the next transaction. It returns io.EOF at the natural end
// of the segment (zero length, clean EOF, or a truncated final entry) and
// ErrCorruptEntry when a complete entry fails its checksum.
func (tr *TxnReader) Next() (*proto.Txn, error) {
	if tr.done {
		return nil, io.EOF
	}

	var prefix [4]byte
	if _, err := io.ReadFull(tr.r, prefix[:]); err != nil {
		tr.done = true
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	length := int32(prefix[0])<<24 | int32(prefix[1])<<16 | int32(prefix[2])<<8 | int32(prefix[3])
	if length <= 0 {
		tr.done = true
		return nil, io.EOF
	}
	limits := frame.DefaultLimits()
	if length > limits.MaxFrameBytes {
		tr.done = true
		return nil, fmt.Errorf("%w: entry at offset %d declares %d bytes", ErrCorruptEntry, tr.offset, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(tr.r, body); err != nil {
		tr.done = true
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Partial final entry, the segment ends here.
			return nil, io.EOF
		}
		return nil, err
	}
	var sumBytes [4]byte
	if _, err := io.ReadFull(tr.r, sumBytes[:]); err != nil {
		tr.done = true
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	declared := uint32(sumBytes[0])<<24 | uint32(sumBytes[1])<<16 | uint32(sumBytes[2])<<8 | uint32(sumBytes[3])
	if sum := adler32.Checksum(body); sum != declared {
		tr.done = true
		return nil, fmt.Errorf("%w: offset %d after zxid %#x", ErrCorruptEntry, tr.offset, tr.last)
	}

	var txn proto.Txn
	if err := txn.ReadFrom(jute.NewDecoder(bytes.NewReader(body))); err != nil {
		tr.done = true
		return nil, fmt.Errorf("txn at offset %d: %w", tr.offset, err)
	}
	if txn.Header.Zxid <= tr.last {
		tr.done = true
		return nil, fmt.Errorf("%w: zxid %#x at offset %d follows %#x",
			ErrOutOfOrderEntry, txn.Header.Zxid, tr.offset, tr.last)
	}

	tr.last = txn.Header.Zxid
	tr.offset += 4 + int64(length) + 4
	return &txn, nil
}

// WriteTxn appends one entry in the segment's wire form. Used by tests and
// tooling that craft log fixtures.
func WriteTxn(w io.Writer, txn *proto.Txn) error {
	var body bytes.Buffer
	if err := txn.WriteTo(jute.NewEncoder(&body)); err != nil {
		return err
	}
	var out bytes.Buffer
	enc := jute.NewEncoder(&out)
	if err := enc.WriteInt(int32(body.Len())); err != nil {
		return err
	}
	if _, err := out.Write(body.Bytes()); err != nil {
		return err
	}
	if err := enc.WriteInt(int32(adler32.Checksum(body.Bytes()))); err != nil {
		return err
	}
	_, err := w.Write(out.Bytes())
	return err
}

// FindTxnlogPaths selects the log segments that cover snapshotZxid and
// everything after it: the newest segment starting at or before the zxid,
// plus all later segments, in zxid order.
func FindTxnlogPaths(dir string, snapshotZxid int64) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type segment struct {
		zxid int64
		path string
	}
	var segments []segment
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		zxid, ok := ZxidFromFilename(e.Name(), "log.")
		if !ok {
			continue
		}
		segments = append(segments, segment{zxid: zxid, path: dir + "/" + e.Name()})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].zxid < segments[j].zxid })

	start := -1
	for i, s := range segments {
		if s.zxid <= snapshotZxid {
			start = i
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("persistence: no txnlog at or before zxid %#x in %s", snapshotZxid, dir)
	}
	paths := make([]string, 0, len(segments)-start)
	for _, s := range segments[start:] {
		paths = append(paths, s.path)
	}
	return paths, nil
}

// ZxidFromFilename parses the hex zxid suffix of "log.<zxid>" and
// "snapshot.<zxid>" filenames.
func ZxidFromFilename(name, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	zxid, err := strconv.ParseInt(rest, 16, 64)
	if err != nil {
		return 0, false
	}
	return zxid, true
}
