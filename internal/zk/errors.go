package zk

import (
	"errors"
	"fmt"

	"github.com/danmuck/zkctl/internal/proto"
)

var (
	// ErrConnectionLoss fails requests that were in flight when the
	// transport dropped. The outcome of those requests is unknown.
	ErrConnectionLoss = errors.New("zk: connection loss")

	// ErrSessionExpired is terminal. Ephemeral nodes and watches tied to
	// the session are gone; the caller needs a new Conn.
	ErrSessionExpired = errors.New("zk: session expired")

	// ErrClosing fails requests submitted after Close.
	ErrClosing = errors.New("zk: conn closing")

	// ErrProtocolViolation means the server reply could not be matched to
	// any outstanding request. The connection is torn down.
	ErrProtocolViolation = errors.New("zk: protocol violation")

	ErrNoServers   = errors.New("zk: no servers configured")
	ErrInvalidPath = errors.New("zk: invalid path")

	ErrNoNode                  = errors.New("zk: node does not exist")
	ErrNodeExists              = errors.New("zk: node already exists")
	ErrBadVersion              = errors.New("zk: version conflict")
	ErrNotEmpty                = errors.New("zk: node has children")
	ErrNoAuth                  = errors.New("zk: not authenticated")
	ErrAuthFailed              = errors.New("zk: authentication failed")
	ErrInvalidACL              = errors.New("zk: invalid ACL")
	ErrReadOnly                = errors.New("zk: server is read-only")
	ErrNoChildrenForEphemerals = errors.New("zk: ephemeral nodes cannot have children")
)

// OpError carries a server error code that has no dedicated sentinel.
type OpError struct {
	Op   proto.OpCode
	Code proto.ErrCode
}

func (e *OpError) Error() string {
	return fmt.Sprintf("zk: %s failed: %s", e.Op, e.Code)
}

var codeErrors = map[proto.ErrCode]error{
	proto.CodeNoNode:                  ErrNoNode,
	proto.CodeNodeExists:              ErrNodeExists,
	proto.CodeBadVersion:              ErrBadVersion,
	proto.CodeNotEmpty:                ErrNotEmpty,
	proto.CodeNoAuth:                  ErrNoAuth,
	proto.CodeAuthFailed:              ErrAuthFailed,
	proto.CodeInvalidACL:              ErrInvalidACL,
	proto.CodeNotReadOnly:             ErrReadOnly,
	proto.CodeSessionExpired:          ErrSessionExpired,
	proto.CodeConnectionLoss:          ErrConnectionLoss,
	proto.CodeNoChildrenForEphemerals: ErrNoChildrenForEphemerals,
}

// errorForCode maps a reply header error onto the package taxonomy.
func errorForCode(op proto.OpCode, code proto.ErrCode) error {
	if code == proto.CodeOk {
		return nil
	}
	if err, ok := codeErrors[code]; ok {
		return err
	}
	return &OpError{Op: op, Code: code}
}
