package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/zkctl/internal/jute"
	"github.com/danmuck/zkctl/internal/persistence"
	"github.com/danmuck/zkctl/internal/proto"
)

func writeSnapshotFixture(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	enc := jute.NewEncoder(&buf)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build snapshot: %v", err)
		}
	}
	must((&persistence.FileHeader{Magic: persistence.SnapMagic, Version: persistence.FormatVersion, DBID: 1}).WriteTo(enc))
	// One session, empty ACL cache, two nodes, "/" terminator.
	must(enc.WriteInt(1))
	must(enc.WriteLong(0xcafe))
	must(enc.WriteInt(30000))
	must(enc.WriteInt(0))
	for _, node := range []struct {
		path string
		data string
	}{{"/app", "root"}, {"/app/leader", "node-1"}} {
		must(enc.WriteString(node.path))
		must(enc.WriteBuffer([]byte(node.data)))
		must(enc.WriteLong(0))
		must((&proto.StatPersisted{Czxid: 1, Mzxid: 2, Version: 1}).WriteTo(enc))
	}
	must(enc.WriteString("/"))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
}

func writeTxnlogFixture(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	enc := jute.NewEncoder(&buf)
	if err := (&persistence.FileHeader{Magic: persistence.TxnlogMagic, Version: persistence.FormatVersion, DBID: 1}).WriteTo(enc); err != nil {
		t.Fatalf("txnlog header: %v", err)
	}
	txn := &proto.Txn{
		Header: proto.TxnHeader{ClientID: 0xcafe, Cxid: 1, Zxid: 0x301, Time: 1700000000000},
		Op:     proto.OpSetData,
		Body:   &proto.SetDataTxn{Path: "/app/leader", Data: []byte("node-2"), Version: 2},
	}
	if err := persistence.WriteTxn(&buf, txn); err != nil {
		t.Fatalf("write txn: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write txnlog: %v", err)
	}
}

func TestDumpDataDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFixture(t, filepath.Join(dir, "snapshot.300"))
	writeTxnlogFixture(t, filepath.Join(dir, "log.300"))

	var out bytes.Buffer
	if err := run([]string{"-dir", dir, "-v"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"session 0xcafe",
		"/app/leader v1",
		`data: "node-1"`,
		"zxid 0x301 setData",
		"1 entries",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDumpRequiresAnInput(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); err == nil {
		t.Fatalf("expected usage error")
	}
}
