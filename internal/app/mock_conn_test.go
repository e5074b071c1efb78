package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/proto"
)

// mockConn records every frame a session would have pushed to its client.
type mockConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	closed  bool
	sendErr error
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// typed returns every recorded envelope of the given frame type.
func (m *mockConn) typed(t *testing.T, typ string) []*proto.Envelope {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*proto.Envelope
	for _, f := range m.frames {
		env, err := proto.Decode(f)
		require.NoError(t, err)
		if env.Type == typ {
			out = append(out, env)
		}
	}
	return out
}

func (m *mockConn) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = nil
}

// stubMember is a fixed-position member for registry-level tests.
type stubMember struct {
	id     core.SessionID
	user   string
	avatar string
	x, y   int
	conn   *mockConn
}

func (s *stubMember) ID() core.SessionID    { return s.id }
func (s *stubMember) UserID() domain.UserID { return domain.UserID(s.user) }
func (s *stubMember) Avatar() string        { return s.avatar }
func (s *stubMember) Position() (int, int)  { return s.x, s.y }
func (s *stubMember) Conn() core.Conn       { return s.conn }
