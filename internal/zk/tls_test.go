package zk

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/zkctl/internal/proto"
	"github.com/danmuck/zkctl/internal/testutil/tlstest"
)

func TestSessionOverTLS(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewAuthority(t, dir)
	certFile, keyFile := ca.IssueServerCert(t, dir, nil, []net.IP{net.ParseIP("127.0.0.1")})
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		t.Fatalf("load server keypair: %v", err)
	}

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := acceptSession(conn, 0x42); err != nil {
			t.Errorf("handshake: %v", err)
			return
		}
		hdr, dec, err := nextRequest(conn)
		if err != nil {
			t.Errorf("read request: %v", err)
			return
		}
		var req proto.ExistsRequest
		if err := req.ReadFrom(dec); err != nil {
			t.Errorf("exists decode: %v", err)
			return
		}
		err = writeRecord(conn, testLimits,
			&proto.ReplyHeader{Xid: hdr.Xid, Zxid: 1},
			&proto.ExistsResponse{Stat: proto.Stat{Version: 1}})
		if err != nil {
			t.Errorf("exists reply: %v", err)
			return
		}
		nextRequest(conn)
	}()

	cfg := testConfig(ln.Addr().String())
	cfg.TLS = TLSConfig{Enabled: true, CAFile: ca.CAFile()}
	c, err := Connect(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stat, err := c.Exists(ctx, "/a")
	if err != nil {
		t.Fatalf("exists over tls: %v", err)
	}
	if stat == nil || stat.Version != 1 {
		t.Fatalf("stat = %+v", stat)
	}
	if c.SessionID() != 0x42 {
		t.Fatalf("session id = %#x", c.SessionID())
	}
}
