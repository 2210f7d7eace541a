package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/danmuck/zkctl/internal/jute"
	"github.com/danmuck/zkctl/internal/proto"
)

// Session is one entry of the snapshot's session table.
type Session struct {
	ID      int64
	Timeout int32
}

// ACLCacheEntry maps a cache id to the ACL list shared by nodes that
// reference it.
type ACLCacheEntry struct {
	EntryID int64
	ACLs    []proto.ACL
}

// Snapshot is a fully parsed snapshot file.
type Snapshot struct {
	Header   FileHeader
	Sessions []Session
	ACLCache map[int64][]proto.ACL
	Tree     *DataTree
}

// ACLsFor resolves a node's ACL reference against the cache.
func (s *Snapshot) ACLsFor(node *DataNode) ([]proto.ACL, bool) {
	acls, ok := s.ACLCache[node.ACLRef]
	return acls, ok
}

// ReadSnapshot parses a complete snapshot: header, session table, ACL
// cache, then the flat node list terminated by the sentinel path "/".
// Parents are serialized before children; a violation is ErrInconsistentTree.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := jute.NewDecoder(bufio.NewReader(r))

	snap := &Snapshot{
		ACLCache: make(map[int64][]proto.ACL),
		Tree:     NewDataTree(),
	}
	if err := snap.Header.ReadFrom(dec); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	if err := snap.Header.validate(SnapMagic); err != nil {
		return nil, err
	}

	sessionCount, err := dec.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("session count: %w", err)
	}
	for i := int32(0); i < sessionCount; i++ {
		var s Session
		if s.ID, err = dec.ReadLong(); err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		if s.Timeout, err = dec.ReadInt(); err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		snap.Sessions = append(snap.Sessions, s)
	}

	aclCount, err := dec.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("acl cache count: %w", err)
	}
	for i := int32(0); i < aclCount; i++ {
		entryID, err := dec.ReadLong()
		if err != nil {
			return nil, fmt.Errorf("acl cache %d: %w", i, err)
		}
		acls, err := readACLVector(dec)
		if err != nil {
			return nil, fmt.Errorf("acl cache %d: %w", i, err)
		}
		snap.ACLCache[entryID] = acls
	}

	for {
		path, err := dec.ReadString()
		if err != nil {
			return nil, fmt.Errorf("node path: %w", err)
		}
		if path == "/" {
			break
		}
		node := &DataNode{Path: path}
		if node.Data, err = dec.ReadBuffer(); err != nil {
			return nil, fmt.Errorf("node %q data: %w", path, err)
		}
		if node.ACLRef, err = dec.ReadLong(); err != nil {
			return nil, fmt.Errorf("node %q acl ref: %w", path, err)
		}
		if err = node.Stat.ReadFrom(dec); err != nil {
			return nil, fmt.Errorf("node %q stat: %w", path, err)
		}
		if err = snap.Tree.Insert(node); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// ReadSnapshotFile opens and parses one snapshot file.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// FindLatestSnapshot returns the snapshot file with the highest zxid suffix
// in dir, or an error when none exists.
func FindLatestSnapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	type candidate struct {
		zxid int64
		path string
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		zxid, ok := ZxidFromFilename(e.Name(), "snapshot.")
		if !ok {
			continue
		}
		found = append(found, candidate{zxid: zxid, path: dir + "/" + e.Name()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("persistence: no snapshot files in %s", dir)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].zxid < found[j].zxid })
	return found[len(found)-1].path, nil
}

func readACLVector(dec *jute.Decoder) ([]proto.ACL, error) {
	n, err := dec.ReadVectorLen()
	if err != nil {
		return nil, err
	}
	acls := make([]proto.ACL, n)
	for i := range acls {
		if err := acls[i].ReadFrom(dec); err != nil {
			return nil, err
		}
	}
	return acls, nil
}
