package zk

import (
	"errors"
	"testing"

	"github.com/danmuck/zkctl/internal/proto"
)

func TestPipelineAssignsSequentialXids(t *testing.T) {
	p := newPipeline()
	for want := int32(1); want <= 3; want++ {
		r := newRequest(proto.OpGetData, nil, nil)
		p.Register(r)
		if r.xid != want {
			t.Fatalf("xid = %d, want %d", r.xid, want)
		}
	}
}

func TestPipelineXidWrapSkipsNonPositive(t *testing.T) {
	p := newPipeline()
	p.lastXid = 1<<31 - 1
	r := newRequest(proto.OpGetData, nil, nil)
	p.Register(r)
	if r.xid != 1 {
		t.Fatalf("wrapped xid = %d, want 1", r.xid)
	}
}

func TestPipelineSentinelXidPreserved(t *testing.T) {
	p := newPipeline()
	r := newRequest(proto.OpAuth, nil, nil)
	r.xid = proto.XidAuth
	p.Register(r)
	got, ok := p.Take(proto.XidAuth)
	if !ok || got != r {
		t.Fatalf("sentinel lookup failed: %v %v", got, ok)
	}
}

func TestPipelineTakeRemoves(t *testing.T) {
	p := newPipeline()
	r := newRequest(proto.OpGetData, nil, nil)
	p.Register(r)
	if _, ok := p.Take(r.xid); !ok {
		t.Fatalf("first take missed")
	}
	if _, ok := p.Take(r.xid); ok {
		t.Fatalf("second take should miss")
	}
}

func TestPipelineFailAllResolvesEachOnce(t *testing.T) {
	p := newPipeline()
	reqs := make([]*request, 4)
	for i := range reqs {
		reqs[i] = newRequest(proto.OpGetData, nil, nil)
		p.Register(reqs[i])
	}
	if n := p.FailAll(ErrConnectionLoss); n != 4 {
		t.Fatalf("failed %d, want 4", n)
	}
	for i, r := range reqs {
		if err := <-r.done; !errors.Is(err, ErrConnectionLoss) {
			t.Fatalf("request %d error %v", i, err)
		}
	}
	if p.Outstanding() != 0 {
		t.Fatalf("pending table not drained")
	}
	if n := p.FailAll(ErrConnectionLoss); n != 0 {
		t.Fatalf("second fail drained %d", n)
	}
}
