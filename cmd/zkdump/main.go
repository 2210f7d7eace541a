// zkdump inspects ZooKeeper server state on disk: it parses a snapshot
// and the transaction logs that follow it, without a running server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/danmuck/zkctl/internal/logging"
	"github.com/danmuck/zkctl/internal/observability"
	"github.com/danmuck/zkctl/internal/persistence"
	"github.com/danmuck/zkctl/internal/proto"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "zkdump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("zkdump", flag.ContinueOnError)
	dir := fs.String("dir", "", "data directory holding snapshot.* and log.* files")
	snapshot := fs.String("snapshot", "", "single snapshot file to dump")
	txnlog := fs.String("txnlog", "", "single transaction log file to dump")
	verbose := fs.Bool("v", false, "print node data and every transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log := logging.ConfigureRuntime()

	switch {
	case *dir != "":
		return dumpDir(out, log, *dir, *verbose)
	case *snapshot != "":
		return dumpSnapshot(out, log, *snapshot, *verbose)
	case *txnlog != "":
		return dumpTxnlog(out, log, *txnlog, *verbose)
	}
	return errors.New("one of -dir, -snapshot, or -txnlog is required")
}

// dumpDir replays a data directory the way a restarting server would:
// the latest snapshot, then every log segment that covers it.
func dumpDir(out io.Writer, log zerolog.Logger, dir string, verbose bool) error {
	snapPath, err := persistence.FindLatestSnapshot(dir)
	if err != nil {
		return err
	}
	if err := dumpSnapshot(out, log, snapPath, verbose); err != nil {
		return err
	}

	zxid, ok := persistence.ZxidFromFilename(filepath.Base(snapPath), "snapshot.")
	if !ok {
		return fmt.Errorf("cannot parse zxid from %s", snapPath)
	}
	paths, err := persistence.FindTxnlogPaths(dir, zxid)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := dumpTxnlog(out, log, p, verbose); err != nil {
			return err
		}
	}
	return nil
}

func dumpSnapshot(out io.Writer, log zerolog.Logger, path string, verbose bool) error {
	snap, err := persistence.ReadSnapshotFile(path)
	if err != nil {
		observability.RecordParseFailure("snapshot")
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("nodes", snap.Tree.Len()).
		Int("sessions", len(snap.Sessions)).Msg("snapshot parsed")

	fmt.Fprintf(out, "snapshot %s (dbid %d)\n", path, snap.Header.DBID)
	for _, s := range snap.Sessions {
		fmt.Fprintf(out, "  session %#x timeout %dms\n", s.ID, s.Timeout)
	}
	return snap.Tree.Walk(func(n *persistence.DataNode) error {
		marker := ""
		if n.IsEphemeral() {
			marker = fmt.Sprintf(" (ephemeral %#x)", n.Stat.EphemeralOwner)
		}
		fmt.Fprintf(out, "  %s v%d%s\n", n.Path, n.Stat.Version, marker)
		if verbose && len(n.Data) > 0 {
			fmt.Fprintf(out, "    data: %q\n", n.Data)
		}
		return nil
	})
}

func dumpTxnlog(out io.Writer, log zerolog.Logger, path string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tr, err := persistence.OpenTxnlog(f)
	if err != nil {
		observability.RecordParseFailure("txnlog_header")
		return fmt.Errorf("txnlog %s: %w", path, err)
	}
	fmt.Fprintf(out, "txnlog %s (dbid %d)\n", path, tr.Header().DBID)

	count := 0
	for {
		txn, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Report how far the parse got; the entries before the
			// failure are still valid.
			observability.RecordParseFailure("txnlog_entry")
			fmt.Fprintf(out, "  %d entries ok, then: %v\n", count, err)
			return fmt.Errorf("txnlog %s: %w", path, err)
		}
		count++
		if verbose {
			fmt.Fprintf(out, "  zxid %#x %s session %#x\n",
				txn.Header.Zxid, txn.Op, txn.Header.ClientID)
			if txn.Op == proto.OpMulti {
				if multi, ok := txn.Body.(*proto.MultiTxn); ok {
					fmt.Fprintf(out, "    multi with %d ops\n", len(multi.Ops))
				}
			}
		}
	}
	fmt.Fprintf(out, "  %d entries\n", count)
	log.Info().Str("path", path).Int("entries", count).Msg("txnlog parsed")
	return nil
}
