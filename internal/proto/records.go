package proto

import (
	"errors"
	"fmt"

	"github.com/danmuck/zkctl/internal/jute"
)

var ErrUnknownOp = errors.New("proto: unknown op code")

// Record is a fixed-shape value with a jute wire form.
type Record interface {
	WriteTo(enc *jute.Encoder) error
	ReadFrom(dec *jute.Decoder) error
}

// Request is a record submitted under a request header. Op reports the op
// code written in that header.
type Request interface {
	Record
	Op() OpCode
}

// ResponseFor returns an empty response record for op. The switch is
// exhaustive over ops that carry a response body; ops whose replies are
// header-only return nil.
func ResponseFor(op OpCode) (Record, error) {
	switch op {
	case OpCreate:
		return &CreateResponse{}, nil
	case OpCreate2, OpCreateTTL, OpCreateContainer:
		return &Create2Response{}, nil
	case OpExists:
		return &ExistsResponse{}, nil
	case OpGetData:
		return &GetDataResponse{}, nil
	case OpSetData:
		return &SetDataResponse{}, nil
	case OpGetACL:
		return &GetACLResponse{}, nil
	case OpSetACL:
		return &SetACLResponse{}, nil
	case OpGetChildren:
		return &GetChildrenResponse{}, nil
	case OpGetChildren2:
		return &GetChildren2Response{}, nil
	case OpSync:
		return &SyncResponse{}, nil
	case OpDelete, OpPing, OpAuth, OpSetWatches, OpCheck, OpCheckWatches,
		OpRemoveWatches, OpCloseSession:
		return nil, nil
	case OpMulti:
		return &MultiResponse{}, nil
	case OpNotification, OpError, OpCreateSession, OpSasl, OpReconfig,
		OpDeleteContainer:
		return nil, fmt.Errorf("%w: %v has no client response shape", ErrUnknownOp, op)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownOp, op)
}

// RequestHeader precedes every request after the connect handshake.
type RequestHeader struct {
	Xid int32
	Op  OpCode
}

func (h *RequestHeader) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(h.Xid); err != nil {
		return err
	}
	return enc.WriteInt(int32(h.Op))
}

func (h *RequestHeader) ReadFrom(dec *jute.Decoder) error {
	var err error
	if h.Xid, err = dec.ReadInt(); err != nil {
		return err
	}
	op, err := dec.ReadInt()
	if err != nil {
		return err
	}
	h.Op = OpCode(op)
	return nil
}

// ReplyHeader precedes every response and notification.
type ReplyHeader struct {
	Xid  int32
	Zxid int64
	Err  ErrCode
}

func (h *ReplyHeader) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(h.Xid); err != nil {
		return err
	}
	if err := enc.WriteLong(h.Zxid); err != nil {
		return err
	}
	return enc.WriteInt(int32(h.Err))
}

func (h *ReplyHeader) ReadFrom(dec *jute.Decoder) error {
	var err error
	if h.Xid, err = dec.ReadInt(); err != nil {
		return err
	}
	if h.Zxid, err = dec.ReadLong(); err != nil {
		return err
	}
	code, err := dec.ReadInt()
	if err != nil {
		return err
	}
	h.Err = ErrCode(code)
	return nil
}

// ConnectRequest opens or resumes a session. SessionID and Passwd are zero
// and empty on a fresh connect.
type ConnectRequest struct {
	ProtocolVersion int32
	LastZxidSeen    int64
	Timeout         int32
	SessionID       int64
	Passwd          []byte
	ReadOnly        bool
}

func (r *ConnectRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(r.ProtocolVersion); err != nil {
		return err
	}
	if err := enc.WriteLong(r.LastZxidSeen); err != nil {
		return err
	}
	if err := enc.WriteInt(r.Timeout); err != nil {
		return err
	}
	if err := enc.WriteLong(r.SessionID); err != nil {
		return err
	}
	if err := enc.WriteBuffer(r.Passwd); err != nil {
		return err
	}
	return enc.WriteBool(r.ReadOnly)
}

func (r *ConnectRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.ProtocolVersion, err = dec.ReadInt(); err != nil {
		return err
	}
	if r.LastZxidSeen, err = dec.ReadLong(); err != nil {
		return err
	}
	if r.Timeout, err = dec.ReadInt(); err != nil {
		return err
	}
	if r.SessionID, err = dec.ReadLong(); err != nil {
		return err
	}
	if r.Passwd, err = dec.ReadBuffer(); err != nil {
		return err
	}
	r.ReadOnly, err = dec.ReadBool()
	return err
}

// ConnectResponse carries the negotiated session. A zero SessionID means the
// server does not know the session: it expired.
type ConnectResponse struct {
	ProtocolVersion int32
	Timeout         int32
	SessionID       int64
	Passwd          []byte
	ReadOnly        bool
}

func (r *ConnectResponse) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(r.ProtocolVersion); err != nil {
		return err
	}
	if err := enc.WriteInt(r.Timeout); err != nil {
		return err
	}
	if err := enc.WriteLong(r.SessionID); err != nil {
		return err
	}
	if err := enc.WriteBuffer(r.Passwd); err != nil {
		return err
	}
	return enc.WriteBool(r.ReadOnly)
}

func (r *ConnectResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.ProtocolVersion, err = dec.ReadInt(); err != nil {
		return err
	}
	if r.Timeout, err = dec.ReadInt(); err != nil {
		return err
	}
	if r.SessionID, err = dec.ReadLong(); err != nil {
		return err
	}
	if r.Passwd, err = dec.ReadBuffer(); err != nil {
		return err
	}
	r.ReadOnly, err = dec.ReadBool()
	return err
}

// ACL is one access-control entry.
type ACL struct {
	Perms  int32
	Scheme string
	ID     string
}

func (a *ACL) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(a.Perms); err != nil {
		return err
	}
	if err := enc.WriteString(a.Scheme); err != nil {
		return err
	}
	return enc.WriteString(a.ID)
}

func (a *ACL) ReadFrom(dec *jute.Decoder) error {
	var err error
	if a.Perms, err = dec.ReadInt(); err != nil {
		return err
	}
	if a.Scheme, err = dec.ReadString(); err != nil {
		return err
	}
	a.ID, err = dec.ReadString()
	return err
}

func writeACLVector(enc *jute.Encoder, acls []ACL) error {
	if err := enc.WriteVectorLen(len(acls)); err != nil {
		return err
	}
	for i := range acls {
		if err := acls[i].WriteTo(enc); err != nil {
			return err
		}
	}
	return nil
}

func readACLVector(dec *jute.Decoder) ([]ACL, error) {
	n, err := dec.ReadVectorLen()
	if err != nil {
		return nil, err
	}
	acls := make([]ACL, n)
	for i := range acls {
		if err := acls[i].ReadFrom(dec); err != nil {
			return nil, err
		}
	}
	return acls, nil
}

func writeStringVector(enc *jute.Encoder, ss []string) error {
	if err := enc.WriteVectorLen(len(ss)); err != nil {
		return err
	}
	for _, s := range ss {
		if err := enc.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func readStringVector(dec *jute.Decoder) ([]string, error) {
	n, err := dec.ReadVectorLen()
	if err != nil {
		return nil, err
	}
	ss := make([]string, n)
	for i := range ss {
		if ss[i], err = dec.ReadString(); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

// Stat is the node metadata shared with clients.
type Stat struct {
	Czxid          int64
	Mzxid          int64
	Ctime          int64
	Mtime          int64
	Version        int32
	Cversion       int32
	Aversion       int32
	EphemeralOwner int64
	DataLength     int32
	NumChildren    int32
	Pzxid          int64
}

// IsEphemeral reports whether the node is owned by a session. A zero
// ephemeral owner marks a persistent node.
func (s *Stat) IsEphemeral() bool {
	return s.EphemeralOwner != 0
}

func (s *Stat) WriteTo(enc *jute.Encoder) error {
	for _, v := range []int64{s.Czxid, s.Mzxid, s.Ctime, s.Mtime} {
		if err := enc.WriteLong(v); err != nil {
			return err
		}
	}
	for _, v := range []int32{s.Version, s.Cversion, s.Aversion} {
		if err := enc.WriteInt(v); err != nil {
			return err
		}
	}
	if err := enc.WriteLong(s.EphemeralOwner); err != nil {
		return err
	}
	if err := enc.WriteInt(s.DataLength); err != nil {
		return err
	}
	if err := enc.WriteInt(s.NumChildren); err != nil {
		return err
	}
	return enc.WriteLong(s.Pzxid)
}

func (s *Stat) ReadFrom(dec *jute.Decoder) error {
	var err error
	if s.Czxid, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Mzxid, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Ctime, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Mtime, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Version, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.Cversion, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.Aversion, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.EphemeralOwner, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.DataLength, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.NumChildren, err = dec.ReadInt(); err != nil {
		return err
	}
	s.Pzxid, err = dec.ReadLong()
	return err
}

// StatPersisted is the stat subset stored in snapshots; data length and
// child count are derived at load time.
type StatPersisted struct {
	Czxid          int64
	Mzxid          int64
	Ctime          int64
	Mtime          int64
	Version        int32
	Cversion       int32
	Aversion       int32
	EphemeralOwner int64
	Pzxid          int64
}

func (s *StatPersisted) WriteTo(enc *jute.Encoder) error {
	for _, v := range []int64{s.Czxid, s.Mzxid, s.Ctime, s.Mtime} {
		if err := enc.WriteLong(v); err != nil {
			return err
		}
	}
	for _, v := range []int32{s.Version, s.Cversion, s.Aversion} {
		if err := enc.WriteInt(v); err != nil {
			return err
		}
	}
	if err := enc.WriteLong(s.EphemeralOwner); err != nil {
		return err
	}
	return enc.WriteLong(s.Pzxid)
}

func (s *StatPersisted) ReadFrom(dec *jute.Decoder) error {
	var err error
	if s.Czxid, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Mzxid, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Ctime, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Mtime, err = dec.ReadLong(); err != nil {
		return err
	}
	if s.Version, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.Cversion, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.Aversion, err = dec.ReadInt(); err != nil {
		return err
	}
	if s.EphemeralOwner, err = dec.ReadLong(); err != nil {
		return err
	}
	s.Pzxid, err = dec.ReadLong()
	return err
}

// WatcherEvent is the body of a notification frame.
type WatcherEvent struct {
	Type  EventType
	State KeeperState
	Path  string
}

func (w *WatcherEvent) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(int32(w.Type)); err != nil {
		return err
	}
	if err := enc.WriteInt(int32(w.State)); err != nil {
		return err
	}
	return enc.WriteString(w.Path)
}

func (w *WatcherEvent) ReadFrom(dec *jute.Decoder) error {
	typ, err := dec.ReadInt()
	if err != nil {
		return err
	}
	state, err := dec.ReadInt()
	if err != nil {
		return err
	}
	w.Type = EventType(typ)
	w.State = KeeperState(state)
	w.Path, err = dec.ReadString()
	return err
}

// SetWatchesRequest re-arms watches after a session moves to a new server.
type SetWatchesRequest struct {
	RelativeZxid int64
	DataWatches  []string
	ExistWatches []string
	ChildWatches []string
}

func (r *SetWatchesRequest) Op() OpCode { return OpSetWatches }

func (r *SetWatchesRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteLong(r.RelativeZxid); err != nil {
		return err
	}
	if err := writeStringVector(enc, r.DataWatches); err != nil {
		return err
	}
	if err := writeStringVector(enc, r.ExistWatches); err != nil {
		return err
	}
	return writeStringVector(enc, r.ChildWatches)
}

func (r *SetWatchesRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.RelativeZxid, err = dec.ReadLong(); err != nil {
		return err
	}
	if r.DataWatches, err = readStringVector(dec); err != nil {
		return err
	}
	if r.ExistWatches, err = readStringVector(dec); err != nil {
		return err
	}
	r.ChildWatches, err = readStringVector(dec)
	return err
}

// AuthPacket adds credentials to the session.
type AuthPacket struct {
	Type   int32
	Scheme string
	Auth   []byte
}

func (r *AuthPacket) Op() OpCode { return OpAuth }

func (r *AuthPacket) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(r.Type); err != nil {
		return err
	}
	if err := enc.WriteString(r.Scheme); err != nil {
		return err
	}
	return enc.WriteBuffer(r.Auth)
}

func (r *AuthPacket) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Type, err = dec.ReadInt(); err != nil {
		return err
	}
	if r.Scheme, err = dec.ReadString(); err != nil {
		return err
	}
	r.Auth, err = dec.ReadBuffer()
	return err
}

// PingRequest has an empty body.
type PingRequest struct{}

func (r *PingRequest) Op() OpCode                   { return OpPing }
func (r *PingRequest) WriteTo(*jute.Encoder) error  { return nil }
func (r *PingRequest) ReadFrom(*jute.Decoder) error { return nil }

// CloseRequest has an empty body.
type CloseRequest struct{}

func (r *CloseRequest) Op() OpCode                   { return OpCloseSession }
func (r *CloseRequest) WriteTo(*jute.Encoder) error  { return nil }
func (r *CloseRequest) ReadFrom(*jute.Decoder) error { return nil }

type CreateRequest struct {
	Path  string
	Data  []byte
	ACLs  []ACL
	Flags CreateMode
}

func (r *CreateRequest) Op() OpCode { return OpCreate }

func (r *CreateRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(r.Data); err != nil {
		return err
	}
	if err := writeACLVector(enc, r.ACLs); err != nil {
		return err
	}
	return enc.WriteInt(int32(r.Flags))
}

func (r *CreateRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if r.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	if r.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	flags, err := dec.ReadInt()
	if err != nil {
		return err
	}
	r.Flags = CreateMode(flags)
	return nil
}

type CreateResponse struct {
	Path string
}

func (r *CreateResponse) WriteTo(enc *jute.Encoder) error {
	return enc.WriteString(r.Path)
}

func (r *CreateResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	r.Path, err = dec.ReadString()
	return err
}

type Create2Response struct {
	Path string
	Stat Stat
}

func (r *Create2Response) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	return r.Stat.WriteTo(enc)
}

func (r *Create2Response) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	return r.Stat.ReadFrom(dec)
}

type DeleteRequest struct {
	Path    string
	Version int32
}

func (r *DeleteRequest) Op() OpCode { return OpDelete }

func (r *DeleteRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	return enc.WriteInt(r.Version)
}

func (r *DeleteRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	r.Version, err = dec.ReadInt()
	return err
}

// pathWatchRequest is the shared shape of exists/getData/getChildren.
type pathWatchRequest struct {
	Path  string
	Watch bool
}

func (r *pathWatchRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	return enc.WriteBool(r.Watch)
}

func (r *pathWatchRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	r.Watch, err = dec.ReadBool()
	return err
}

type ExistsRequest struct{ pathWatchRequest }

func NewExistsRequest(path string, watch bool) *ExistsRequest {
	return &ExistsRequest{pathWatchRequest{Path: path, Watch: watch}}
}

func (r *ExistsRequest) Op() OpCode { return OpExists }

type ExistsResponse struct {
	Stat Stat
}

func (r *ExistsResponse) WriteTo(enc *jute.Encoder) error  { return r.Stat.WriteTo(enc) }
func (r *ExistsResponse) ReadFrom(dec *jute.Decoder) error { return r.Stat.ReadFrom(dec) }

type GetDataRequest struct{ pathWatchRequest }

func NewGetDataRequest(path string, watch bool) *GetDataRequest {
	return &GetDataRequest{pathWatchRequest{Path: path, Watch: watch}}
}

func (r *GetDataRequest) Op() OpCode { return OpGetData }

type GetDataResponse struct {
	Data []byte
	Stat Stat
}

func (r *GetDataResponse) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteBuffer(r.Data); err != nil {
		return err
	}
	return r.Stat.WriteTo(enc)
}

func (r *GetDataResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	return r.Stat.ReadFrom(dec)
}

type SetDataRequest struct {
	Path    string
	Data    []byte
	Version int32
}

func (r *SetDataRequest) Op() OpCode { return OpSetData }

func (r *SetDataRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(r.Data); err != nil {
		return err
	}
	return enc.WriteInt(r.Version)
}

func (r *SetDataRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if r.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	r.Version, err = dec.ReadInt()
	return err
}

type SetDataResponse struct {
	Stat Stat
}

func (r *SetDataResponse) WriteTo(enc *jute.Encoder) error  { return r.Stat.WriteTo(enc) }
func (r *SetDataResponse) ReadFrom(dec *jute.Decoder) error { return r.Stat.ReadFrom(dec) }

type GetACLRequest struct {
	Path string
}

func (r *GetACLRequest) Op() OpCode { return OpGetACL }

func (r *GetACLRequest) WriteTo(enc *jute.Encoder) error { return enc.WriteString(r.Path) }

func (r *GetACLRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	r.Path, err = dec.ReadString()
	return err
}

type GetACLResponse struct {
	ACLs []ACL
	Stat Stat
}

func (r *GetACLResponse) WriteTo(enc *jute.Encoder) error {
	if err := writeACLVector(enc, r.ACLs); err != nil {
		return err
	}
	return r.Stat.WriteTo(enc)
}

func (r *GetACLResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	return r.Stat.ReadFrom(dec)
}

type SetACLRequest struct {
	Path    string
	ACLs    []ACL
	Version int32
}

func (r *SetACLRequest) Op() OpCode { return OpSetACL }

func (r *SetACLRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	if err := writeACLVector(enc, r.ACLs); err != nil {
		return err
	}
	return enc.WriteInt(r.Version)
}

func (r *SetACLRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if r.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	r.Version, err = dec.ReadInt()
	return err
}

type SetACLResponse struct {
	Stat Stat
}

func (r *SetACLResponse) WriteTo(enc *jute.Encoder) error  { return r.Stat.WriteTo(enc) }
func (r *SetACLResponse) ReadFrom(dec *jute.Decoder) error { return r.Stat.ReadFrom(dec) }

type GetChildrenRequest struct{ pathWatchRequest }

func NewGetChildrenRequest(path string, watch bool) *GetChildrenRequest {
	return &GetChildrenRequest{pathWatchRequest{Path: path, Watch: watch}}
}

func (r *GetChildrenRequest) Op() OpCode { return OpGetChildren }

type GetChildrenResponse struct {
	Children []string
}

func (r *GetChildrenResponse) WriteTo(enc *jute.Encoder) error {
	return writeStringVector(enc, r.Children)
}

func (r *GetChildrenResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	r.Children, err = readStringVector(dec)
	return err
}

type GetChildren2Request struct{ pathWatchRequest }

func NewGetChildren2Request(path string, watch bool) *GetChildren2Request {
	return &GetChildren2Request{pathWatchRequest{Path: path, Watch: watch}}
}

func (r *GetChildren2Request) Op() OpCode { return OpGetChildren2 }

type GetChildren2Response struct {
	Children []string
	Stat     Stat
}

func (r *GetChildren2Response) WriteTo(enc *jute.Encoder) error {
	if err := writeStringVector(enc, r.Children); err != nil {
		return err
	}
	return r.Stat.WriteTo(enc)
}

func (r *GetChildren2Response) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Children, err = readStringVector(dec); err != nil {
		return err
	}
	return r.Stat.ReadFrom(dec)
}

type SyncRequest struct {
	Path string
}

func (r *SyncRequest) Op() OpCode { return OpSync }

func (r *SyncRequest) WriteTo(enc *jute.Encoder) error { return enc.WriteString(r.Path) }

func (r *SyncRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	r.Path, err = dec.ReadString()
	return err
}

type SyncResponse struct {
	Path string
}

func (r *SyncResponse) WriteTo(enc *jute.Encoder) error { return enc.WriteString(r.Path) }

func (r *SyncResponse) ReadFrom(dec *jute.Decoder) error {
	var err error
	r.Path, err = dec.ReadString()
	return err
}

type CheckVersionRequest struct {
	Path    string
	Version int32
}

func (r *CheckVersionRequest) Op() OpCode { return OpCheck }

func (r *CheckVersionRequest) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(r.Path); err != nil {
		return err
	}
	return enc.WriteInt(r.Version)
}

func (r *CheckVersionRequest) ReadFrom(dec *jute.Decoder) error {
	var err error
	if r.Path, err = dec.ReadString(); err != nil {
		return err
	}
	r.Version, err = dec.ReadInt()
	return err
}
