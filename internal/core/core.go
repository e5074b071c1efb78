package core

import "github.com/dkeye/Plaza/internal/domain"

// Frame is one encoded wire message.
type Frame []byte

// SessionID is the opaque per-connection identifier, minted at connect
// time. One person reconnecting gets a fresh SessionID.
type SessionID string

// Conn is the outbound half of a client connection.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	// TrySend never blocks; a full buffer or a closed connection is an
	// error the caller may drop on.
	TrySend(Frame) error
	Close()
}

// Member is the registry's view of a joined session: enough to
// identify, locate and reach it, nothing more.
type Member interface {
	ID() SessionID
	UserID() domain.UserID
	Avatar() string
	Position() (x, y int)
	Conn() Conn
}
