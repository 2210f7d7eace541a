// Package zk owns the client side of a ZooKeeper session.
//
// Ownership boundary:
// - ensemble selection, dialing, and reconnect backoff
// - the connect handshake and session lifecycle
// - xid correlation between requests and replies
// - watch registration, dispatch, and replay
//
// Wire encoding lives in internal/jute and internal/proto; byte framing
// lives in internal/frame. This package composes them into a Conn.
package zk
