// zkwatch connects to a ZooKeeper ensemble and streams node changes for
// a set of paths until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/zkctl/internal/config"
	"github.com/danmuck/zkctl/internal/logging"
	"github.com/danmuck/zkctl/internal/zk"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "zkwatch: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("zkwatch", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML watch config file")
	clientConfigPath := fs.String("client-config", "", "TOML session config (servers, timeouts, backoff, tls)")
	server := fs.String("server", "", "ensemble member host:port (repeatable via config file)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session := zk.DefaultConfig()
	if *clientConfigPath != "" {
		cc, err := config.LoadClientConfig(*clientConfigPath)
		if err != nil {
			return err
		}
		session = cc.SessionConfig()
	}
	cfg := watchConfig{Session: session}
	if *configPath != "" {
		loaded, err := loadWatchConfig(*configPath, session)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *server != "" {
		cfg.Session.Servers = []string{*server}
	}
	cfg.Paths = append(cfg.Paths, fs.Args()...)
	if len(cfg.Paths) == 0 {
		return errors.New("no paths to watch")
	}

	log := logging.ConfigureRuntime()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := zk.Connect(cfg.Session, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.AuthScheme != "" {
		if err := conn.AddAuth(ctx, cfg.AuthScheme, []byte(cfg.AuthCredential)); err != nil {
			return fmt.Errorf("add auth: %w", err)
		}
	}

	var wg sync.WaitGroup
	for _, path := range cfg.Paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			watchPath(ctx, conn, log, path)
		}(path)
	}

	// Session-level events until interrupted or the session dies.
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			wg.Wait()
			return nil
		case ev := <-conn.Events():
			if ev.Err != nil && (errors.Is(ev.Err, zk.ErrSessionExpired) || errors.Is(ev.Err, zk.ErrClosing)) {
				wg.Wait()
				return ev.Err
			}
		}
	}
}

// watchPath re-arms an existence watch each time it fires, logging the
// node's value while it exists.
func watchPath(ctx context.Context, conn *zk.Conn, log zerolog.Logger, path string) {
	for {
		stat, ch, err := conn.ExistsW(ctx, path)
		if err != nil {
			if errors.Is(err, zk.ErrSessionExpired) || errors.Is(err, zk.ErrClosing) || ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("path", path).Msg("watch arm failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if stat == nil {
			log.Info().Str("path", path).Msg("node absent")
		} else {
			data, _, err := conn.Get(ctx, path)
			if err == nil {
				log.Info().Str("path", path).Int32("version", stat.Version).
					Bytes("data", data).Msg("node value")
			}
		}

		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			log.Info().Stringer("event", ev.Type).Str("path", ev.Path).Msg("change")
		case <-ctx.Done():
			return
		}
	}
}
