package zk

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/zkctl/internal/frame"
	"github.com/danmuck/zkctl/internal/jute"
	"github.com/danmuck/zkctl/internal/observability"
	"github.com/danmuck/zkctl/internal/proto"
)

// State is the client-side session lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReadOnly
	StateExpired
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReadOnly:
		return "connected read-only"
	case StateExpired:
		return "expired"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const sessionPasswordLen = 16

// Conn is one client session against a ZooKeeper ensemble. The session
// survives reconnects to other ensemble members until it expires or the
// caller closes it; both of those states are terminal.
type Conn struct {
	cfg   Config
	log   zerolog.Logger
	hosts *hostProvider
	rng   *rand.Rand

	pipeline *pipeline
	watches  *watchRegistry

	sendCh chan *request
	events chan Event

	state atomic.Int32

	mu        sync.Mutex
	sessionID int64
	passwd    []byte
	lastZxid  int64
	timeout   time.Duration
	lastAlive time.Time

	closed    chan struct{}
	closeOnce sync.Once
	loopDone  chan struct{}
}

// Connect validates cfg and starts the session loop. It returns
// immediately; operations submitted before the handshake completes are
// queued and sent once connected.
func Connect(cfg Config, log zerolog.Logger) (*Conn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hosts, err := newHostProvider(cfg.Servers)
	if err != nil {
		return nil, err
	}
	if cfg.Limits.MaxFrameBytes <= 0 {
		cfg.Limits = frame.DefaultLimits()
	}
	c := &Conn{
		cfg:      cfg,
		log:      log.With().Str("component", "zk").Logger(),
		hosts:    hosts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		pipeline: newPipeline(),
		watches:  newWatchRegistry(),
		sendCh:   make(chan *request, 64),
		events:   make(chan Event, 16),
		passwd:   make([]byte, sessionPasswordLen),
		timeout:  cfg.SessionTimeout,
		closed:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go c.loop()
	return c, nil
}

// State reports the current session state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		c.log.Debug().Stringer("from", old).Stringer("to", s).Msg("session state")
	}
}

// SessionID returns the server-assigned session id, zero before the
// first handshake completes.
func (c *Conn) SessionID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SessionTimeout returns the negotiated session timeout.
func (c *Conn) SessionTimeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// LastZxid returns the highest zxid observed on this session.
func (c *Conn) LastZxid() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastZxid
}

// Events exposes the session event stream: state transitions and every
// watch notification. Slow consumers lose events rather than stall the
// session.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Close tears the session down. The server is asked to end the session
// so ephemeral nodes vanish immediately rather than at timeout.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	<-c.loopDone
	return nil
}

func (c *Conn) loop() {
	defer close(c.loopDone)
	for {
		host, attempt := c.hosts.Next()
		c.setState(StateConnecting)
		err := c.run(host)

		select {
		case <-c.closed:
			c.shutdown(StateClosed, ErrClosing, Event{
				Type: proto.EventNone, State: proto.StateDisconnectedEvent, Err: ErrClosing,
			})
			return
		default:
		}

		// A session that cannot be re-established within its own timeout
		// is gone server-side; stop presenting it.
		c.mu.Lock()
		lapsed := c.sessionID != 0 && !c.lastAlive.IsZero() &&
			time.Since(c.lastAlive) > c.timeout
		c.mu.Unlock()
		if lapsed {
			err = ErrSessionExpired
		}

		if errors.Is(err, ErrSessionExpired) {
			c.log.Warn().Int64("session_id", c.SessionID()).Msg("session expired")
			c.shutdown(StateExpired, ErrSessionExpired, Event{
				Type: proto.EventNone, State: proto.StateExpiredEvent, Err: ErrSessionExpired,
			})
			return
		}

		failed := c.pipeline.FailAll(ErrConnectionLoss)
		c.setState(StateDisconnected)
		c.emit(Event{Type: proto.EventNone, State: proto.StateDisconnectedEvent, Err: err})
		delay := NextBackoffDelay(c.cfg.Backoff, attempt, c.rng)
		c.log.Warn().Err(err).Str("host", host).Int("failed_requests", failed).
			Dur("retry_in", delay).Msg("connection lost")

		select {
		case <-c.closed:
			c.shutdown(StateClosed, ErrClosing, Event{
				Type: proto.EventNone, State: proto.StateDisconnectedEvent, Err: ErrClosing,
			})
			return
		case <-time.After(delay):
		}
	}
}

// shutdown is the terminal path shared by close and expiry. Every
// outstanding and queued request fails exactly once; every armed watch
// gets one terminal event.
func (c *Conn) shutdown(s State, err error, ev Event) {
	c.setState(s)
	c.pipeline.FailAll(err)
	for {
		select {
		case r := <-c.sendCh:
			r.complete(err)
		default:
			c.watches.CloseAll(ev)
			c.emit(ev)
			return
		}
	}
}

// run owns one physical connection: dial, handshake, then serve until
// the transport fails or the session ends.
func (c *Conn) run(host string) error {
	conn, err := c.dial(host)
	if err != nil {
		observability.RecordReconnect(host, "dial_failed")
		return err
	}
	defer conn.Close()

	readOnly, err := c.handshake(conn)
	if err != nil {
		observability.RecordReconnect(host, "handshake_failed")
		return err
	}
	c.hosts.Connected()
	observability.RecordReconnect(host, "ok")

	state := StateConnected
	keeperState := proto.StateSyncConnected
	if readOnly {
		state = StateReadOnly
		keeperState = proto.StateConnectedReadOnly
	}
	c.setState(state)
	c.emit(Event{Type: proto.EventNone, State: keeperState})
	c.log.Info().Str("host", host).Int64("session_id", c.SessionID()).
		Dur("timeout", c.SessionTimeout()).Bool("read_only", readOnly).Msg("session established")

	if c.cfg.ReplayWatches {
		if err := c.replayWatches(conn); err != nil {
			return err
		}
	}
	return c.serve(conn)
}

func (c *Conn) dial(host string) (net.Conn, error) {
	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	tlsCfg, err := c.cfg.tlsClientConfig()
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{Timeout: timeout}
	if tlsCfg == nil {
		return dialer.Dial("tcp", host)
	}
	if tlsCfg.ServerName == "" {
		h, _, err := net.SplitHostPort(host)
		if err != nil {
			return nil, err
		}
		tlsCfg = tlsCfg.Clone()
		tlsCfg.ServerName = h
	}
	return tls.DialWithDialer(dialer, "tcp", host, tlsCfg)
}

// handshake sends the connect request and applies the negotiated
// session. A zero negotiated timeout means the server refused the
// session we tried to resume.
func (c *Conn) handshake(conn net.Conn) (readOnly bool, err error) {
	c.mu.Lock()
	req := &proto.ConnectRequest{
		LastZxidSeen: c.lastZxid,
		Timeout:      int32(c.cfg.SessionTimeout / time.Millisecond),
		SessionID:    c.sessionID,
		Passwd:       c.passwd,
		ReadOnly:     c.cfg.ReadOnly,
	}
	resuming := c.sessionID != 0
	c.mu.Unlock()

	deadline := time.Now().Add(c.cfg.ConnectTimeout)
	if c.cfg.ConnectTimeout <= 0 {
		deadline = time.Now().Add(5 * time.Second)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false, err
	}
	if err := writeRecord(conn, c.cfg.Limits, req); err != nil {
		return false, fmt.Errorf("connect request: %w", err)
	}
	body, err := frame.Read(conn, c.cfg.Limits)
	if err != nil {
		return false, fmt.Errorf("connect response: %w", err)
	}
	var resp proto.ConnectResponse
	if err := resp.ReadFrom(jute.NewDecoder(bytes.NewReader(body))); err != nil {
		return false, fmt.Errorf("connect response: %w", err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return false, err
	}

	if resp.Timeout <= 0 || resp.SessionID == 0 {
		if resuming {
			return false, ErrSessionExpired
		}
		return false, fmt.Errorf("%w: server granted no session", ErrProtocolViolation)
	}

	c.mu.Lock()
	c.sessionID = resp.SessionID
	c.passwd = resp.Passwd
	c.timeout = time.Duration(resp.Timeout) * time.Millisecond
	c.lastAlive = time.Now()
	c.mu.Unlock()
	return resp.ReadOnly, nil
}

// replayWatches re-arms every live watch on the new connection. The
// reply resolves through the pending table like any other request.
func (c *Conn) replayWatches(conn net.Conn) error {
	data, exist, child := c.watches.Paths()
	if len(data) == 0 && len(exist) == 0 && len(child) == 0 {
		return nil
	}
	req := &proto.SetWatchesRequest{
		RelativeZxid: c.LastZxid(),
		DataWatches:  data,
		ExistWatches: exist,
		ChildWatches: child,
	}
	r := newRequest(proto.OpSetWatches, req, nil)
	r.xid = proto.XidSetWatches
	c.pipeline.Register(r)
	hdr := &proto.RequestHeader{Xid: r.xid, Op: proto.OpSetWatches}
	if err := writeRecord(conn, c.cfg.Limits, hdr, req); err != nil {
		return fmt.Errorf("set watches: %w", err)
	}
	c.log.Debug().Int("data", len(data)).Int("exist", len(exist)).
		Int("child", len(child)).Msg("watches replayed")
	return nil
}

// serve runs the send and receive loops until either fails. The first
// error wins; closing the socket unblocks the other loop.
func (c *Conn) serve(conn net.Conn) error {
	timeout := c.SessionTimeout()
	pingInterval := timeout / 3
	readDeadline := 2 * timeout / 3

	errc := make(chan error, 2)
	dying := make(chan struct{})
	var once sync.Once
	stop := func(err error) {
		once.Do(func() {
			errc <- err
			close(dying)
			conn.Close()
		})
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stop(c.sendLoop(conn, dying, pingInterval))
	}()
	go func() {
		defer wg.Done()
		stop(c.recvLoop(conn, readDeadline))
	}()
	wg.Wait()
	return <-errc
}

func (c *Conn) sendLoop(conn net.Conn, dying <-chan struct{}, pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case r := <-c.sendCh:
			c.pipeline.Register(r)
			hdr := &proto.RequestHeader{Xid: r.xid, Op: r.op}
			if err := writeRecord(conn, c.cfg.Limits, hdr, r.req); err != nil {
				return err
			}
		case <-ticker.C:
			hdr := &proto.RequestHeader{Xid: proto.XidPing, Op: proto.OpPing}
			if err := writeRecord(conn, c.cfg.Limits, hdr); err != nil {
				return err
			}
			observability.RecordHeartbeat()
		case <-c.closed:
			// Best effort; the server also reaps the session at timeout.
			hdr := &proto.RequestHeader{Xid: 0, Op: proto.OpCloseSession}
			_ = writeRecord(conn, c.cfg.Limits, hdr)
			return nil
		case <-dying:
			return nil
		}
	}
}

func (c *Conn) recvLoop(conn net.Conn, readDeadline time.Duration) error {
	for {
		if readDeadline > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
				return err
			}
		}
		body, err := frame.Read(conn, c.cfg.Limits)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.lastAlive = time.Now()
		c.mu.Unlock()
		dec := jute.NewDecoder(bytes.NewReader(body))
		var hdr proto.ReplyHeader
		if err := hdr.ReadFrom(dec); err != nil {
			return fmt.Errorf("reply header: %w", err)
		}
		if hdr.Zxid > 0 {
			c.mu.Lock()
			c.lastZxid = hdr.Zxid
			c.mu.Unlock()
		}

		switch hdr.Xid {
		case proto.XidPing:
			continue
		case proto.XidNotification:
			var ev proto.WatcherEvent
			if err := ev.ReadFrom(dec); err != nil {
				return fmt.Errorf("watcher event: %w", err)
			}
			c.handleWatcherEvent(ev)
			continue
		}

		r, ok := c.pipeline.Take(hdr.Xid)
		if !ok {
			return fmt.Errorf("%w: reply for unknown xid %d", ErrProtocolViolation, hdr.Xid)
		}
		if hdr.Err != proto.CodeOk {
			r.complete(errorForCode(r.op, hdr.Err))
			continue
		}
		if r.resp != nil {
			if err := r.resp.ReadFrom(dec); err != nil {
				err = fmt.Errorf("%w: decode %s reply: %v", ErrProtocolViolation, r.op, err)
				r.complete(err)
				return err
			}
		}
		r.complete(nil)
	}
}

func (c *Conn) handleWatcherEvent(we proto.WatcherEvent) {
	ev := Event{Type: we.Type, State: we.State, Path: we.Path}
	observability.RecordWatchEvent(ev.Type.String())
	fired := c.watches.Dispatch(ev)
	c.emit(ev)
	c.log.Debug().Stringer("type", ev.Type).Str("path", ev.Path).
		Int("fired", fired).Msg("watch event")
}

func (c *Conn) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// do submits one operation and waits for its resolution.
func (c *Conn) do(ctx context.Context, op proto.OpCode, req, resp proto.Record) error {
	start := time.Now()
	r := newRequest(op, req, resp)
	err := c.submit(ctx, r)
	if err == nil {
		err = c.await(ctx, r)
	}
	observability.RecordRequest(op.String(), outcomeLabel(err), time.Since(start))
	return err
}

func (c *Conn) submit(ctx context.Context, r *request) error {
	switch c.State() {
	case StateExpired:
		return ErrSessionExpired
	case StateClosed:
		return ErrClosing
	}
	select {
	case c.sendCh <- r:
		return nil
	case <-c.closed:
		return ErrClosing
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) await(ctx context.Context, r *request) error {
	select {
	case err := <-r.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.loopDone:
		select {
		case err := <-r.done:
			return err
		default:
		}
		if c.State() == StateExpired {
			return ErrSessionExpired
		}
		return ErrClosing
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoNode):
		return "no_node"
	case errors.Is(err, ErrNodeExists):
		return "node_exists"
	case errors.Is(err, ErrBadVersion):
		return "bad_version"
	case errors.Is(err, ErrConnectionLoss):
		return "connection_loss"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	default:
		return "error"
	}
}

func writeRecord(w io.Writer, limits frame.Limits, recs ...proto.Record) error {
	var buf bytes.Buffer
	enc := jute.NewEncoder(&buf)
	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if err := rec.WriteTo(enc); err != nil {
			return err
		}
	}
	return frame.Write(w, buf.Bytes(), limits)
}
