package proto

import (
	"fmt"

	"github.com/danmuck/zkctl/internal/jute"
)

// TxnHeader precedes every logged transaction. The op code follows the
// header on the wire and selects the payload shape.
type TxnHeader struct {
	ClientID int64
	Cxid     int32
	Zxid     int64
	Time     int64
}

func (h *TxnHeader) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteLong(h.ClientID); err != nil {
		return err
	}
	if err := enc.WriteInt(h.Cxid); err != nil {
		return err
	}
	if err := enc.WriteLong(h.Zxid); err != nil {
		return err
	}
	return enc.WriteLong(h.Time)
}

func (h *TxnHeader) ReadFrom(dec *jute.Decoder) error {
	var err error
	if h.ClientID, err = dec.ReadLong(); err != nil {
		return err
	}
	if h.Cxid, err = dec.ReadInt(); err != nil {
		return err
	}
	if h.Zxid, err = dec.ReadLong(); err != nil {
		return err
	}
	h.Time, err = dec.ReadLong()
	return err
}

// Txn is one logged transaction: header, op code, and the op payload.
type Txn struct {
	Header TxnHeader
	Op     OpCode
	Body   Record
}

func (t *Txn) WriteTo(enc *jute.Encoder) error {
	if err := t.Header.WriteTo(enc); err != nil {
		return err
	}
	if err := enc.WriteInt(int32(t.Op)); err != nil {
		return err
	}
	if t.Body == nil {
		return nil
	}
	return t.Body.WriteTo(enc)
}

func (t *Txn) ReadFrom(dec *jute.Decoder) error {
	if err := t.Header.ReadFrom(dec); err != nil {
		return err
	}
	op, err := dec.ReadInt()
	if err != nil {
		return err
	}
	t.Op = OpCode(op)
	t.Body, err = txnBodyFor(t.Op)
	if err != nil {
		return err
	}
	if t.Body == nil {
		return nil
	}
	return t.Body.ReadFrom(dec)
}

// txnBodyFor maps a logged op code to its payload record. Exhaustive over
// every op the server logs; closeSession has no payload.
func txnBodyFor(op OpCode) (Record, error) {
	switch op {
	case OpCreateSession:
		return &CreateSessionTxn{}, nil
	case OpCloseSession:
		return nil, nil
	case OpCreate, OpCreate2:
		return &CreateTxn{}, nil
	case OpCreateTTL:
		return &CreateTTLTxn{}, nil
	case OpCreateContainer:
		return &CreateContainerTxn{}, nil
	case OpDelete, OpDeleteContainer:
		return &DeleteTxn{}, nil
	case OpSetData, OpReconfig:
		return &SetDataTxn{}, nil
	case OpSetACL:
		return &SetACLTxn{}, nil
	case OpCheck:
		return &CheckVersionTxn{}, nil
	case OpError:
		return &ErrorTxn{}, nil
	case OpMulti:
		return &MultiTxn{}, nil
	}
	return nil, fmt.Errorf("%w: txn op %v", ErrUnknownOp, op)
}

type CreateTxn struct {
	Path           string
	Data           []byte
	ACLs           []ACL
	Ephemeral      bool
	ParentCVersion int32
}

func (t *CreateTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(t.Data); err != nil {
		return err
	}
	if err := writeACLVector(enc, t.ACLs); err != nil {
		return err
	}
	if err := enc.WriteBool(t.Ephemeral); err != nil {
		return err
	}
	return enc.WriteInt(t.ParentCVersion)
}

func (t *CreateTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if t.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	if t.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	if t.Ephemeral, err = dec.ReadBool(); err != nil {
		return err
	}
	t.ParentCVersion, err = dec.ReadInt()
	return err
}

type CreateContainerTxn struct {
	Path           string
	Data           []byte
	ACLs           []ACL
	ParentCVersion int32
}

func (t *CreateContainerTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(t.Data); err != nil {
		return err
	}
	if err := writeACLVector(enc, t.ACLs); err != nil {
		return err
	}
	return enc.WriteInt(t.ParentCVersion)
}

func (t *CreateContainerTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if t.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	if t.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	t.ParentCVersion, err = dec.ReadInt()
	return err
}

type CreateTTLTxn struct {
	Path           string
	Data           []byte
	ACLs           []ACL
	ParentCVersion int32
	TTL            int64
}

func (t *CreateTTLTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(t.Data); err != nil {
		return err
	}
	if err := writeACLVector(enc, t.ACLs); err != nil {
		return err
	}
	if err := enc.WriteInt(t.ParentCVersion); err != nil {
		return err
	}
	return enc.WriteLong(t.TTL)
}

func (t *CreateTTLTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if t.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	if t.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	if t.ParentCVersion, err = dec.ReadInt(); err != nil {
		return err
	}
	t.TTL, err = dec.ReadLong()
	return err
}

type DeleteTxn struct {
	Path string
}

func (t *DeleteTxn) WriteTo(enc *jute.Encoder) error { return enc.WriteString(t.Path) }

func (t *DeleteTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	t.Path, err = dec.ReadString()
	return err
}

type SetDataTxn struct {
	Path    string
	Data    []byte
	Version int32
}

func (t *SetDataTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	if err := enc.WriteBuffer(t.Data); err != nil {
		return err
	}
	return enc.WriteInt(t.Version)
}

func (t *SetDataTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if t.Data, err = dec.ReadBuffer(); err != nil {
		return err
	}
	t.Version, err = dec.ReadInt()
	return err
}

type SetACLTxn struct {
	Path    string
	ACLs    []ACL
	Version int32
}

func (t *SetACLTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	if err := writeACLVector(enc, t.ACLs); err != nil {
		return err
	}
	return enc.WriteInt(t.Version)
}

func (t *SetACLTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	if t.ACLs, err = readACLVector(dec); err != nil {
		return err
	}
	t.Version, err = dec.ReadInt()
	return err
}

type CheckVersionTxn struct {
	Path    string
	Version int32
}

func (t *CheckVersionTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteString(t.Path); err != nil {
		return err
	}
	return enc.WriteInt(t.Version)
}

func (t *CheckVersionTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	if t.Path, err = dec.ReadString(); err != nil {
		return err
	}
	t.Version, err = dec.ReadInt()
	return err
}

type CreateSessionTxn struct {
	Timeout int32
}

func (t *CreateSessionTxn) WriteTo(enc *jute.Encoder) error { return enc.WriteInt(t.Timeout) }

func (t *CreateSessionTxn) ReadFrom(dec *jute.Decoder) error {
	var err error
	t.Timeout, err = dec.ReadInt()
	return err
}

type ErrorTxn struct {
	Err ErrCode
}

func (t *ErrorTxn) WriteTo(enc *jute.Encoder) error { return enc.WriteInt(int32(t.Err)) }

func (t *ErrorTxn) ReadFrom(dec *jute.Decoder) error {
	code, err := dec.ReadInt()
	if err != nil {
		return err
	}
	t.Err = ErrCode(code)
	return nil
}

// MultiTxn carries the member transactions of an atomic multi op. Each
// member is framed as op code, byte length, then payload; the length is
// redundant with the payload shape and is ignored on read.
type MultiTxn struct {
	Ops []MultiTxnOp
}

type MultiTxnOp struct {
	Op   OpCode
	Body Record
}

func multiTxnBodyFor(op OpCode) (Record, error) {
	switch op {
	case OpCreate, OpCreate2:
		return &CreateTxn{}, nil
	case OpCreateTTL:
		return &CreateTTLTxn{}, nil
	case OpCreateContainer:
		return &CreateContainerTxn{}, nil
	case OpDelete, OpDeleteContainer:
		return &DeleteTxn{}, nil
	case OpSetData:
		return &SetDataTxn{}, nil
	case OpCheck:
		return &CheckVersionTxn{}, nil
	case OpError:
		return &ErrorTxn{}, nil
	}
	return nil, fmt.Errorf("%w: multi txn op %v", ErrUnknownOp, op)
}

func (t *MultiTxn) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteVectorLen(len(t.Ops)); err != nil {
		return err
	}
	for _, op := range t.Ops {
		if _, err := multiTxnBodyFor(op.Op); err != nil {
			return err
		}
		if err := enc.WriteInt(int32(op.Op)); err != nil {
			return err
		}
		// Byte length of the member payload; readers skip it.
		var sizer countingWriter
		if err := op.Body.WriteTo(jute.NewEncoder(&sizer)); err != nil {
			return err
		}
		if err := enc.WriteInt(int32(sizer.n)); err != nil {
			return err
		}
		if err := op.Body.WriteTo(enc); err != nil {
			return err
		}
	}
	return nil
}

func (t *MultiTxn) ReadFrom(dec *jute.Decoder) error {
	n, err := dec.ReadVectorLen()
	if err != nil {
		return err
	}
	t.Ops = make([]MultiTxnOp, 0, n)
	for i := 0; i < n; i++ {
		opCode, err := dec.ReadInt()
		if err != nil {
			return err
		}
		if _, err := dec.ReadInt(); err != nil { // member byte length
			return err
		}
		body, err := multiTxnBodyFor(OpCode(opCode))
		if err != nil {
			return err
		}
		if err := body.ReadFrom(dec); err != nil {
			return err
		}
		t.Ops = append(t.Ops, MultiTxnOp{Op: OpCode(opCode), Body: body})
	}
	return nil
}

type countingWriter struct {
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}
