package zk

import (
	"context"
	"errors"
	"strings"

	"github.com/danmuck/zkctl/internal/proto"
)

// validatePath enforces the server's path rules client-side so a typo
// fails fast instead of burning a round trip.
func validatePath(path string, sequential bool) error {
	if path == "" || path[0] != '/' {
		return ErrInvalidPath
	}
	if path == "/" {
		return nil
	}
	if !sequential && strings.HasSuffix(path, "/") {
		return ErrInvalidPath
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidPath
		}
	}
	return nil
}

// Create makes a node and returns its actual path, which differs from
// the requested path for sequential modes.
func (c *Conn) Create(ctx context.Context, path string, data []byte, acls []proto.ACL, mode proto.CreateMode) (string, error) {
	if err := validatePath(path, mode.IsSequential()); err != nil {
		return "", err
	}
	req := &proto.CreateRequest{Path: path, Data: data, ACLs: acls, Flags: mode}
	resp := &proto.CreateResponse{}
	if err := c.do(ctx, proto.OpCreate, req, resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// Delete removes a node. Pass proto.AnyVersion to skip the version
// check.
func (c *Conn) Delete(ctx context.Context, path string, version int32) error {
	if err := validatePath(path, false); err != nil {
		return err
	}
	return c.do(ctx, proto.OpDelete, &proto.DeleteRequest{Path: path, Version: version}, nil)
}

// Exists returns the node's stat, or nil when the node is absent.
func (c *Conn) Exists(ctx context.Context, path string) (*proto.Stat, error) {
	stat, _, err := c.exists(ctx, path, false)
	return stat, err
}

// ExistsW is Exists plus a watch that fires when the node is created,
// deleted, or its data changes. The watch arms even when the node does
// not exist yet.
func (c *Conn) ExistsW(ctx context.Context, path string) (*proto.Stat, <-chan Event, error) {
	return c.exists(ctx, path, true)
}

func (c *Conn) exists(ctx context.Context, path string, watch bool) (*proto.Stat, <-chan Event, error) {
	if err := validatePath(path, false); err != nil {
		return nil, nil, err
	}
	// The watch arms before submission so a notification racing the
	// reply cannot slip past the registry.
	var ch <-chan Event
	if watch {
		ch = c.watches.Add(path, watchExist)
	}
	resp := &proto.ExistsResponse{}
	err := c.do(ctx, proto.OpExists, proto.NewExistsRequest(path, watch), resp)
	if errors.Is(err, ErrNoNode) {
		// The server arms an exist watch on NoNode too.
		return nil, ch, nil
	}
	if err != nil {
		if watch {
			c.watches.Remove(path, watchExist, ch)
		}
		return nil, nil, err
	}
	return &resp.Stat, ch, nil
}

// Get reads a node's data and stat.
func (c *Conn) Get(ctx context.Context, path string) ([]byte, *proto.Stat, error) {
	data, stat, _, err := c.get(ctx, path, false)
	return data, stat, err
}

// GetW is Get plus a data watch.
func (c *Conn) GetW(ctx context.Context, path string) ([]byte, *proto.Stat, <-chan Event, error) {
	return c.get(ctx, path, true)
}

func (c *Conn) get(ctx context.Context, path string, watch bool) ([]byte, *proto.Stat, <-chan Event, error) {
	if err := validatePath(path, false); err != nil {
		return nil, nil, nil, err
	}
	var ch <-chan Event
	if watch {
		ch = c.watches.Add(path, watchData)
	}
	resp := &proto.GetDataResponse{}
	if err := c.do(ctx, proto.OpGetData, proto.NewGetDataRequest(path, watch), resp); err != nil {
		if watch {
			c.watches.Remove(path, watchData, ch)
		}
		return nil, nil, nil, err
	}
	return resp.Data, &resp.Stat, ch, nil
}

// Set writes a node's data, guarded by version unless proto.AnyVersion.
func (c *Conn) Set(ctx context.Context, path string, data []byte, version int32) (*proto.Stat, error) {
	if err := validatePath(path, false); err != nil {
		return nil, err
	}
	resp := &proto.SetDataResponse{}
	req := &proto.SetDataRequest{Path: path, Data: data, Version: version}
	if err := c.do(ctx, proto.OpSetData, req, resp); err != nil {
		return nil, err
	}
	return &resp.Stat, nil
}

// Children lists a node's children.
func (c *Conn) Children(ctx context.Context, path string) ([]string, error) {
	children, _, err := c.children(ctx, path, false)
	return children, err
}

// ChildrenW is Children plus a child watch.
func (c *Conn) ChildrenW(ctx context.Context, path string) ([]string, <-chan Event, error) {
	children, ch, err := c.children(ctx, path, true)
	return children, ch, err
}

func (c *Conn) children(ctx context.Context, path string, watch bool) ([]string, <-chan Event, error) {
	if err := validatePath(path, false); err != nil {
		return nil, nil, err
	}
	var ch <-chan Event
	if watch {
		ch = c.watches.Add(path, watchChild)
	}
	resp := &proto.GetChildrenResponse{}
	if err := c.do(ctx, proto.OpGetChildren, proto.NewGetChildrenRequest(path, watch), resp); err != nil {
		if watch {
			c.watches.Remove(path, watchChild, ch)
		}
		return nil, nil, err
	}
	return resp.Children, ch, nil
}

// ChildrenStat lists children and returns the parent's stat in the same
// round trip.
func (c *Conn) ChildrenStat(ctx context.Context, path string) ([]string, *proto.Stat, error) {
	if err := validatePath(path, false); err != nil {
		return nil, nil, err
	}
	resp := &proto.GetChildren2Response{}
	if err := c.do(ctx, proto.OpGetChildren2, proto.NewGetChildren2Request(path, false), resp); err != nil {
		return nil, nil, err
	}
	return resp.Children, &resp.Stat, nil
}

// Sync flushes the leader-to-follower channel for path, so a following
// read observes everything committed before the call.
func (c *Conn) Sync(ctx context.Context, path string) (string, error) {
	if err := validatePath(path, false); err != nil {
		return "", err
	}
	resp := &proto.SyncResponse{}
	if err := c.do(ctx, proto.OpSync, &proto.SyncRequest{Path: path}, resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// GetACL reads a node's ACL list and stat.
func (c *Conn) GetACL(ctx context.Context, path string) ([]proto.ACL, *proto.Stat, error) {
	if err := validatePath(path, false); err != nil {
		return nil, nil, err
	}
	resp := &proto.GetACLResponse{}
	if err := c.do(ctx, proto.OpGetACL, &proto.GetACLRequest{Path: path}, resp); err != nil {
		return nil, nil, err
	}
	return resp.ACLs, &resp.Stat, nil
}

// SetACL replaces a node's ACL list, guarded by the ACL version.
func (c *Conn) SetACL(ctx context.Context, path string, acls []proto.ACL, version int32) (*proto.Stat, error) {
	if err := validatePath(path, false); err != nil {
		return nil, err
	}
	resp := &proto.SetACLResponse{}
	req := &proto.SetACLRequest{Path: path, ACLs: acls, Version: version}
	if err := c.do(ctx, proto.OpSetACL, req, resp); err != nil {
		return nil, err
	}
	return &resp.Stat, nil
}

// AddAuth attaches credentials to the session. The request rides the
// reserved auth xid instead of the normal sequence.
func (c *Conn) AddAuth(ctx context.Context, scheme string, auth []byte) error {
	r := newRequest(proto.OpAuth, &proto.AuthPacket{Scheme: scheme, Auth: auth}, nil)
	r.xid = proto.XidAuth
	if err := c.submit(ctx, r); err != nil {
		return err
	}
	return c.await(ctx, r)
}

// Multi runs a write transaction: all operations commit or none do.
// Only create, delete, set, and version-check operations are allowed.
func (c *Conn) Multi(ctx context.Context, ops ...proto.Request) ([]proto.MultiOpResult, error) {
	resp := &proto.MultiResponse{}
	if err := c.do(ctx, proto.OpMulti, &proto.MultiRequest{Ops: ops}, resp); err != nil {
		return nil, err
	}
	// On abort every result carries an error code; ops that were not the
	// cause report runtime inconsistency. Surface the real cause.
	for _, res := range resp.Results {
		if res.Err != proto.CodeOk && res.Err != proto.CodeRuntimeInconsistency {
			return resp.Results, errorForCode(proto.OpMulti, res.Err)
		}
	}
	return resp.Results, nil
}
