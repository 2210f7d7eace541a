package proto

import (
	"fmt"

	"github.com/danmuck/zkctl/internal/jute"
)

// MultiHeader frames each op inside a multi request/response. The sequence
// ends with an all-done header carrying type -1.
type MultiHeader struct {
	Type int32
	Done bool
	Err  int32
}

func (h *MultiHeader) WriteTo(enc *jute.Encoder) error {
	if err := enc.WriteInt(h.Type); err != nil {
		return err
	}
	if err := enc.WriteBool(h.Done); err != nil {
		return err
	}
	return enc.WriteInt(h.Err)
}

func (h *MultiHeader) ReadFrom(dec *jute.Decoder) error {
	var err error
	if h.Type, err = dec.ReadInt(); err != nil {
		return err
	}
	if h.Done, err = dec.ReadBool(); err != nil {
		return err
	}
	h.Err, err = dec.ReadInt()
	return err
}

// MultiRequest bundles several write operations into one atomic request.
// Only create, delete, setData and check are valid members.
type MultiRequest struct {
	Ops []Request
}

func (r *MultiRequest) Op() OpCode { return OpMulti }

func (r *MultiRequest) WriteTo(enc *jute.Encoder) error {
	for _, op := range r.Ops {
		switch op.Op() {
		case OpCreate, OpDelete, OpSetData, OpCheck:
		default:
			return fmt.Errorf("%w: %v not allowed in multi", ErrUnknownOp, op.Op())
		}
		h := MultiHeader{Type: int32(op.Op()), Done: false, Err: -1}
		if err := h.WriteTo(enc); err != nil {
			return err
		}
		if err := op.WriteTo(enc); err != nil {
			return err
		}
	}
	done := MultiHeader{Type: -1, Done: true, Err: -1}
	return done.WriteTo(enc)
}

func (r *MultiRequest) ReadFrom(dec *jute.Decoder) error {
	r.Ops = nil
	for {
		var h MultiHeader
		if err := h.ReadFrom(dec); err != nil {
			return err
		}
		if h.Done {
			return nil
		}
		var op Request
		switch OpCode(h.Type) {
		case OpCreate:
			op = &CreateRequest{}
		case OpDelete:
			op = &DeleteRequest{}
		case OpSetData:
			op = &SetDataRequest{}
		case OpCheck:
			op = &CheckVersionRequest{}
		default:
			return fmt.Errorf("%w: multi member op %d", ErrUnknownOp, h.Type)
		}
		if err := op.ReadFrom(dec); err != nil {
			return err
		}
		r.Ops = append(r.Ops, op)
	}
}

// MultiOpResult is the outcome of one op inside a multi response. Exactly
// one of the typed fields is set, selected by Type.
type MultiOpResult struct {
	Type    OpCode
	Err     ErrCode
	Create  *CreateResponse
	SetData *SetDataResponse
}

// MultiResponse carries per-op results in submission order.
type MultiResponse struct {
	Results []MultiOpResult
}

func (r *MultiResponse) WriteTo(enc *jute.Encoder) error {
	for _, res := range r.Results {
		h := MultiHeader{Type: int32(res.Type), Done: false, Err: int32(res.Err)}
		if err := h.WriteTo(enc); err != nil {
			return err
		}
		switch res.Type {
		case OpCreate:
			if err := res.Create.WriteTo(enc); err != nil {
				return err
			}
		case OpSetData:
			if err := res.SetData.WriteTo(enc); err != nil {
				return err
			}
		case OpDelete, OpCheck:
			// header only
		case OpError:
			if err := enc.WriteInt(int32(res.Err)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: multi result op %v", ErrUnknownOp, res.Type)
		}
	}
	done := MultiHeader{Type: -1, Done: true, Err: -1}
	return done.WriteTo(enc)
}

func (r *MultiResponse) ReadFrom(dec *jute.Decoder) error {
	r.Results = nil
	for {
		var h MultiHeader
		if err := h.ReadFrom(dec); err != nil {
			return err
		}
		if h.Done {
			return nil
		}
		res := MultiOpResult{Type: OpCode(h.Type), Err: ErrCode(h.Err)}
		switch res.Type {
		case OpCreate:
			res.Create = &CreateResponse{}
			if err := res.Create.ReadFrom(dec); err != nil {
				return err
			}
		case OpSetData:
			res.SetData = &SetDataResponse{}
			if err := res.SetData.ReadFrom(dec); err != nil {
				return err
			}
		case OpDelete, OpCheck:
			// header only
		case OpError:
			code, err := dec.ReadInt()
			if err != nil {
				return err
			}
			res.Err = ErrCode(code)
		default:
			return fmt.Errorf("%w: multi result op %d", ErrUnknownOp, h.Type)
		}
		r.Results = append(r.Results, res)
	}
}
