// Package persistence owns the offline readers for ZooKeeper's on-disk
// state: snapshot files and transaction log segments.
//
// Ownership boundary:
// - file headers and magic/version validation
// - snapshot session table, ACL cache, and node tree reconstruction
// - transaction log iteration with checksum verification
//
// Readers operate on caller-supplied byte sources and hold no session state;
// independent sources may be read concurrently.
package persistence

import (
	"errors"
	"fmt"

	"github.com/danmuck/zkctl/internal/jute"
)

const (
	SnapMagic     int32 = 0x5A4B5300
	TxnlogMagic   int32 = 0x5A4B4C47 // "ZKLG"
	FormatVersion int32 = 2
)

var (
	ErrBadMagic         = errors.New("persistence: wrong magic number")
	ErrBadVersion       = errors.New("persistence: unsupported format version")
	ErrInconsistentTree = errors.New("persistence: node seen before its parent")
	ErrCorruptEntry     = errors.New("persistence: transaction checksum mismatch")
	ErrOutOfOrderEntry  = errors.New("persistence: transaction zxid not increasing")
)

// FileHeader opens both snapshot and transaction log files.
type FileHeader struct {
	Magic   int32
	Version int32
	DBID    int64
}

func (h *FileHeader) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(h.Magic); err != nil {
		return err
	}
	if err := enc.WriteInt(h.Version); err != nil {
		return err
	}
	return enc.WriteLong(h.DBID)
}

func (h *FileHeader) ReadFrom(dec *jute.Decoder) error {
	var err error
	if h.Magic, err = dec.ReadInt(); err != nil {
		return err
	}
	if h.Version, err = dec.ReadInt(); err != nil {
		return err
	}
	h.DBID, err = dec.ReadLong()
	return err
}

func (h *FileHeader) validate(magic int32) error {
	if h.Magic != magic {
		return fmt.Errorf("%w: got %#x want %#x", ErrBadMagic, h.Magic, magic)
	}
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: got %d want %d", ErrBadVersion, h.Version, FormatVersion)
	}
	return nil
}
