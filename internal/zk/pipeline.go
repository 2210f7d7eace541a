package zk

import (
	"sync"

	"github.com/danmuck/zkctl/internal/proto"
)

// request is one in-flight operation awaiting its reply.
type request struct {
	op   proto.OpCode
	req  proto.Record
	resp proto.Record
	xid  int32
	done chan error
}

func newRequest(op proto.OpCode, req, resp proto.Record) *request {
	return &request{op: op, req: req, resp: resp, done: make(chan error, 1)}
}

// complete resolves the request. The pipeline removes a request from the
// pending table before completing it, so each resolves exactly once.
func (r *request) complete(err error) {
	r.done <- err
}

// pipeline owns xid allocation and the pending table. Replies arrive in
// submission order; the xid check catches a server that disagrees.
type pipeline struct {
	mu      sync.Mutex
	lastXid int32
	pending map[int32]*request
}

func newPipeline() *pipeline {
	return &pipeline{pending: make(map[int32]*request)}
}

// Register assigns the next xid and tracks the request. Sentinel requests
// (auth, setWatches) pass their reserved xid and skip allocation.
func (p *pipeline) Register(r *request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r.xid == 0 {
		r.xid = p.allocXidLocked()
	}
	p.pending[r.xid] = r
}

// Xids wrap around the positive int32 range, never landing on zero or the
// negative sentinels.
func (p *pipeline) allocXidLocked() int32 {
	p.lastXid++
	if p.lastXid <= 0 {
		p.lastXid = 1
	}
	return p.lastXid
}

// Take removes and returns the request matching xid.
func (p *pipeline) Take(xid int32) (*request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.pending[xid]
	if ok {
		delete(p.pending, xid)
	}
	return r, ok
}

// FailAll drains the pending table and fails every request with err.
func (p *pipeline) FailAll(err error) int {
	p.mu.Lock()
	drained := make([]*request, 0, len(p.pending))
	for xid, r := range p.pending {
		drained = append(drained, r)
		delete(p.pending, xid)
	}
	p.mu.Unlock()

	for _, r := range drained {
		r.complete(err)
	}
	return len(drained)
}

func (p *pipeline) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
