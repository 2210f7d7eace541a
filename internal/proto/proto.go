// Package proto owns the record shapes of the ZooKeeper protocol.
//
// Ownership boundary:
// - op codes, error codes, watcher/keeper enumerations
// - request/response records for the live wire
// - transaction records shared with the persisted log format
//
// Records are defined once and reused by both the connection path and the
// offline file readers; field order is the wire order.
package proto

import "fmt"

// OpCode identifies an operation in request headers and transaction logs.
// Values from ZooDefs.java.
type OpCode int32

const (
	OpNotification    OpCode = 0
	OpCreate          OpCode = 1
	OpDelete          OpCode = 2
	OpExists          OpCode = 3
	OpGetData         OpCode = 4
	OpSetData         OpCode = 5
	OpGetACL          OpCode = 6
	OpSetACL          OpCode = 7
	OpGetChildren     OpCode = 8
	OpSync            OpCode = 9
	OpPing            OpCode = 11
	OpGetChildren2    OpCode = 12
	OpCheck           OpCode = 13
	OpMulti           OpCode = 14
	OpCreate2         OpCode = 15
	OpReconfig        OpCode = 16
	OpCheckWatches    OpCode = 17
	OpRemoveWatches   OpCode = 18
	OpCreateContainer OpCode = 19
	OpDeleteContainer OpCode = 20
	OpCreateTTL       OpCode = 21
	OpAuth            OpCode = 100
	OpSetWatches      OpCode = 101
	OpSasl            OpCode = 102
	OpCreateSession   OpCode = -10
	OpCloseSession    OpCode = -11
	OpError           OpCode = -1
)

func (o OpCode) String() string {
	switch o {
	case OpNotification:
		return "notification"
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpExists:
		return "exists"
	case OpGetData:
		return "getData"
	case OpSetData:
		return "setData"
	case OpGetACL:
		return "getACL"
	case OpSetACL:
		return "setACL"
	case OpGetChildren:
		return "getChildren"
	case OpSync:
		return "sync"
	case OpPing:
		return "ping"
	case OpGetChildren2:
		return "getChildren2"
	case OpCheck:
		return "check"
	case OpMulti:
		return "multi"
	case OpCreate2:
		return "create2"
	case OpReconfig:
		return "reconfig"
	case OpCheckWatches:
		return "checkWatches"
	case OpRemoveWatches:
		return "removeWatches"
	case OpCreateContainer:
		return "createContainer"
	case OpDeleteContainer:
		return "deleteContainer"
	case OpCreateTTL:
		return "createTTL"
	case OpAuth:
		return "auth"
	case OpSetWatches:
		return "setWatches"
	case OpSasl:
		return "sasl"
	case OpCreateSession:
		return "createSession"
	case OpCloseSession:
		return "closeSession"
	case OpError:
		return "error"
	}
	return fmt.Sprintf("opcode(%d)", int32(o))
}

// Reserved xids carried in reply headers for traffic that does not belong to
// a submitted request. See FinalRequestProcessor in the ZK server.
const (
	XidNotification int32 = -1
	XidPing         int32 = -2
	XidAuth         int32 = -4
	XidSetWatches   int32 = -8
)

// ErrCode is a server-reported status. Zero is success; negative values are
// failures. Values from KeeperException.Code.
type ErrCode int32

const (
	CodeOk ErrCode = 0

	// System errors: codes in (CodeAPIError, CodeSystemError).
	CodeSystemError          ErrCode = -1
	CodeRuntimeInconsistency ErrCode = -2
	CodeDataInconsistency    ErrCode = -3
	CodeConnectionLoss       ErrCode = -4
	CodeMarshallingError     ErrCode = -5
	CodeUnimplemented        ErrCode = -6
	CodeOperationTimeout     ErrCode = -7
	CodeBadArguments         ErrCode = -8
	CodeUnknownSession       ErrCode = -12
	CodeNewConfigNoQuorum    ErrCode = -13
	CodeReconfigInProgress   ErrCode = -14

	// API errors: codes below CodeAPIError.
	CodeAPIError                ErrCode = -100
	CodeNoNode                  ErrCode = -101
	CodeNoAuth                  ErrCode = -102
	CodeBadVersion              ErrCode = -103
	CodeNoChildrenForEphemerals ErrCode = -108
	CodeNodeExists              ErrCode = -110
	CodeNotEmpty                ErrCode = -111
	CodeSessionExpired          ErrCode = -112
	CodeInvalidCallback         ErrCode = -113
	CodeInvalidACL              ErrCode = -114
	CodeAuthFailed              ErrCode = -115
	CodeSessionMoved            ErrCode = -118
	CodeNotReadOnly             ErrCode = -119
	CodeEphemeralOnLocalSession ErrCode = -120
	CodeNoWatcher               ErrCode = -121
	CodeReconfigDisabled        ErrCode = -123
)

func (c ErrCode) IsSystemError() bool {
	return c < CodeSystemError && c > CodeAPIError
}

func (c ErrCode) IsAPIError() bool {
	return c < CodeAPIError
}

func (c ErrCode) String() string {
	switch c {
	case CodeOk:
		return "ok"
	case CodeSystemError:
		return "system error"
	case CodeRuntimeInconsistency:
		return "runtime inconsistency"
	case CodeDataInconsistency:
		return "data inconsistency"
	case CodeConnectionLoss:
		return "connection loss"
	case CodeMarshallingError:
		return "marshalling error"
	case CodeUnimplemented:
		return "unimplemented"
	case CodeOperationTimeout:
		return "operation timeout"
	case CodeBadArguments:
		return "bad arguments"
	case CodeUnknownSession:
		return "unknown session"
	case CodeNewConfigNoQuorum:
		return "no quorum for new config"
	case CodeReconfigInProgress:
		return "reconfig in progress"
	case CodeAPIError:
		return "api error"
	case CodeNoNode:
		return "node does not exist"
	case CodeNoAuth:
		return "not authenticated"
	case CodeBadVersion:
		return "version conflict"
	case CodeNoChildrenForEphemerals:
		return "ephemeral nodes may not have children"
	case CodeNodeExists:
		return "node already exists"
	case CodeNotEmpty:
		return "node has children"
	case CodeSessionExpired:
		return "session expired"
	case CodeInvalidCallback:
		return "invalid callback"
	case CodeInvalidACL:
		return "invalid acl"
	case CodeAuthFailed:
		return "authentication failed"
	case CodeSessionMoved:
		return "session moved"
	case CodeNotReadOnly:
		return "server is read-only"
	case CodeEphemeralOnLocalSession:
		return "ephemeral on local session"
	case CodeNoWatcher:
		return "no such watcher"
	case CodeReconfigDisabled:
		return "reconfig disabled"
	}
	return fmt.Sprintf("error code %d", int32(c))
}

// EventType identifies what changed under a watched path. See Watcher.java.
type EventType int32

const (
	EventNone                EventType = -1
	EventNodeCreated         EventType = 1
	EventNodeDeleted         EventType = 2
	EventNodeDataChanged     EventType = 3
	EventNodeChildrenChanged EventType = 4
	EventDataWatchRemoved    EventType = 5
	EventChildWatchRemoved   EventType = 6
)

func (e EventType) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventNodeCreated:
		return "node created"
	case EventNodeDeleted:
		return "node deleted"
	case EventNodeDataChanged:
		return "node data changed"
	case EventNodeChildrenChanged:
		return "node children changed"
	case EventDataWatchRemoved:
		return "data watch removed"
	case EventChildWatchRemoved:
		return "child watch removed"
	}
	return fmt.Sprintf("event(%d)", int32(e))
}

// KeeperState is the connection state stamped on watcher events.
type KeeperState int32

const (
	StateDisconnectedEvent KeeperState = 0
	StateSyncConnected     KeeperState = 3
	StateAuthFailed        KeeperState = 4
	StateConnectedReadOnly KeeperState = 5
	StateSaslAuthenticated KeeperState = 6
	StateExpiredEvent      KeeperState = -112
)

// WatcherType selects the watch class for check/remove watch operations.
type WatcherType int32

const (
	WatcherChildren WatcherType = 1
	WatcherData     WatcherType = 2
	WatcherAny      WatcherType = 3
)

// CreateMode flags for node creation. See CreateMode.java.
type CreateMode int32

const (
	ModePersistent              CreateMode = 0
	ModeEphemeral               CreateMode = 1
	ModePersistentSequential    CreateMode = 2
	ModeEphemeralSequential     CreateMode = 3
	ModeContainer               CreateMode = 4
	ModePersistentTTL           CreateMode = 5
	ModePersistentSequentialTTL CreateMode = 6
)

func (m CreateMode) IsEphemeral() bool {
	return m == ModeEphemeral || m == ModeEphemeralSequential
}

func (m CreateMode) IsSequential() bool {
	return m == ModePersistentSequential || m == ModeEphemeralSequential ||
		m == ModePersistentSequentialTTL
}

// ACL permission bits.
const (
	PermRead   int32 = 1 << 0
	PermWrite  int32 = 1 << 1
	PermCreate int32 = 1 << 2
	PermDelete int32 = 1 << 3
	PermAdmin  int32 = 1 << 4
	PermAll    int32 = PermRead | PermWrite | PermCreate | PermDelete | PermAdmin
)

// WorldACL grants the given permissions to everyone.
func WorldACL(perms int32) []ACL {
	return []ACL{{Perms: perms, Scheme: "world", ID: "anyone"}}
}

// AnyVersion disables the version precondition on conditional operations.
const AnyVersion int32 = -1
