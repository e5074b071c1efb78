package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/auth"
	"github.com/dkeye/Plaza/internal/catalog"
	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/proto"
)

// Stage is the session lifecycle. A session gets exactly one join
// attempt: any failure while joining closes the connection, and nothing
// re-enters StageJoining.
type Stage int

const (
	StageUnbound Stage = iota
	StageJoining
	StageJoined
	StageClosed
)

// Deps is everything a session needs beyond its own connection.
type Deps struct {
	Rooms    *Registry
	Relay    *Relay
	Verifier auth.Verifier
	Spaces   catalog.Spaces
	Profiles catalog.Profiles
	Chat     *RateLimiter

	Step          int
	ChatMaxLen    int
	DefaultAvatar string
}

// Session terminates one client connection: it owns identity, position
// and the outbound handle, decodes inbound frames and turns validated
// intents into registry and relay calls. The mutex guards position and
// stage; other sessions read position during proximity sweeps.
type Session struct {
	id   core.SessionID
	conn core.Conn
	deps Deps

	mu      sync.Mutex
	stage   Stage
	userID  domain.UserID
	role    string
	avatar  string
	spaceID domain.SpaceID
	x, y    int
}

func NewSession(conn core.Conn, deps Deps) *Session {
	return &Session{
		id:   core.SessionID(uuid.NewString()),
		conn: conn,
		deps: deps,
	}
}

// core.Member

func (s *Session) ID() core.SessionID { return s.id }
func (s *Session) Conn() core.Conn    { return s.conn }

func (s *Session) UserID() domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) Avatar() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avatar
}

func (s *Session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// HandleFrame dispatches one inbound frame. Malformed JSON and unknown
// types are logged and dropped, never fatal.
func (s *Session) HandleFrame(ctx context.Context, data []byte) {
	env, err := proto.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("bad frame json")
		return
	}
	switch env.Type {
	case proto.TypeJoin:
		s.handleJoin(ctx, env)
	case proto.TypeChat:
		s.handleChat(env)
	case proto.TypeMove:
		s.handleMove(env)
	case proto.TypeRTCOffer, proto.TypeRTCAnswer, proto.TypeRTCIce:
		s.handleSignal(env)
	case proto.TypeLeave:
		s.Destroy()
	default:
		log.Warn().Str("module", "app.session").Str("sid", string(s.id)).Str("type", env.Type).Msg("unknown frame type")
	}
}

func (s *Session) handleJoin(ctx context.Context, env *proto.Envelope) {
	s.mu.Lock()
	if s.stage != StageUnbound {
		s.mu.Unlock()
		log.Warn().Str("module", "app.session").Str("sid", string(s.id)).Msg("join ignored, session already bound")
		return
	}
	s.stage = StageJoining
	s.mu.Unlock()

	var p proto.JoinPayload
	if err := env.Bind(&p); err != nil || strings.TrimSpace(p.Token) == "" {
		log.Warn().Str("module", "app.session").Str("sid", string(s.id)).Msg("join without usable token")
		s.Destroy()
		return
	}

	ident, err := s.deps.Verifier.Verify(p.Token)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("token rejected")
		s.Destroy()
		return
	}
	userID := ident.UserID

	avatar, err := s.deps.Profiles.AvatarOf(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Str("user", string(userID)).Msg("profile lookup failed")
		s.Destroy()
		return
	}
	if avatar == "" {
		avatar = s.deps.DefaultAvatar
	}

	space, err := s.deps.Spaces.Space(ctx, domain.SpaceID(p.SpaceID))
	if err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Str("space", p.SpaceID).Msg("space lookup failed")
		s.Destroy()
		return
	}

	// Spawn on a random step-aligned cell inside the bounds, so every
	// spawn is reachable by legal moves.
	spawnX := randomCell(space.Width, s.deps.Step)
	spawnY := randomCell(space.Height, s.deps.Step)

	s.mu.Lock()
	s.userID = userID
	s.role = ident.Role
	s.avatar = avatar
	s.spaceID = space.ID
	s.x, s.y = spawnX, spawnY
	s.mu.Unlock()

	self := proto.Presence{ID: string(s.id), UserID: userID, X: spawnX, Y: spawnY, AvatarKind: avatar}
	arrival, err := proto.Marshal(proto.TypeUserJoined, self)
	if err != nil {
		log.Error().Err(err).Str("module", "app.session").Msg("marshal arrival")
		s.Destroy()
		return
	}

	// The welcome reply and the arrival broadcast happen inside Admit,
	// under the room lock, so a concurrent joiner lands either in the
	// users list or as a later user-joined frame, and space-joined is
	// queued ahead of any later arrival.
	err = s.deps.Rooms.Admit(space.ID, s, arrival, func(others []core.Member) {
		s.mu.Lock()
		s.stage = StageJoined
		s.mu.Unlock()

		users := make([]proto.Presence, 0, len(others))
		for _, m := range others {
			users = append(users, presenceOf(m))
		}
		s.send(proto.TypeSpaceJoined, proto.SpaceJoined{
			Self:  self,
			Spawn: proto.Point{X: spawnX, Y: spawnY},
			Users: users,
		})
	})
	if err != nil {
		s.send(proto.TypeJoinRejected, proto.JoinRejected{Reason: proto.ReasonAlreadyInSpace})
		log.Warn().Str("module", "app.session").Str("sid", string(s.id)).Str("user", string(userID)).Str("space", p.SpaceID).Msg("duplicate join rejected")
		s.Destroy()
		return
	}
	log.Info().Str("module", "app.session").Str("sid", string(s.id)).Str("user", string(userID)).Str("role", ident.Role).Str("space", p.SpaceID).Int("x", spawnX).Int("y", spawnY).Msg("joined space")
}

func (s *Session) handleChat(env *proto.Envelope) {
	s.mu.Lock()
	stage, uid, space := s.stage, s.userID, s.spaceID
	s.mu.Unlock()
	if stage != StageJoined {
		return
	}

	var p proto.ChatPayload
	if err := env.Bind(&p); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("bad chat payload")
		return
	}
	text := strings.TrimSpace(p.Message)
	if text == "" {
		return
	}
	if r := []rune(text); len(r) > s.deps.ChatMaxLen {
		text = string(r[:s.deps.ChatMaxLen])
	}
	if s.deps.Chat != nil && !s.deps.Chat.Allow(s.id) {
		log.Debug().Str("module", "app.session").Str("sid", string(s.id)).Str("user", string(uid)).Msg("chat rate limited")
		return
	}

	// One frame, one server timestamp: the sender hears its own message
	// through the same broadcast so everyone shares one ordering truth.
	frame, err := proto.Marshal(proto.TypeChat, proto.Chat{UserID: uid, Message: text, TS: time.Now().UnixMilli()})
	if err != nil {
		log.Error().Err(err).Str("module", "app.session").Msg("marshal chat")
		return
	}
	s.deps.Rooms.Broadcast(space, frame, s.id)
	_ = s.conn.TrySend(frame)
}

func (s *Session) handleMove(env *proto.Envelope) {
	s.mu.Lock()
	stage, space, avatar, curX, curY := s.stage, s.spaceID, s.avatar, s.x, s.y
	uid := s.userID
	s.mu.Unlock()
	if stage != StageJoined {
		return
	}

	var p proto.MovePayload
	if err := env.Bind(&p); err != nil {
		log.Warn().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("bad move payload")
		return
	}

	// Legal iff exactly one axis changes by exactly one step: no
	// diagonals, no teleports, no no-ops.
	dx, dy := abs(p.X-curX), abs(p.Y-curY)
	step := s.deps.Step
	if !((dx == step && dy == 0) || (dx == 0 && dy == step)) {
		s.send(proto.TypeMovementRejected, proto.MovementRejected{X: curX, Y: curY, AvatarKind: avatar})
		log.Debug().Str("module", "app.session").Str("sid", string(s.id)).Int("x", p.X).Int("y", p.Y).Msg("move rejected")
		return
	}

	s.mu.Lock()
	s.x, s.y = p.X, p.Y
	s.mu.Unlock()

	frame, err := proto.Marshal(proto.TypeMovement, proto.Presence{
		ID: string(s.id), UserID: uid, X: p.X, Y: p.Y, AvatarKind: avatar,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.session").Msg("marshal movement")
		return
	}
	s.deps.Rooms.Broadcast(space, frame, s.id)
	_ = s.conn.TrySend(frame)

	s.deps.Rooms.ProximitySweep(space, s)
}

func (s *Session) handleSignal(env *proto.Envelope) {
	s.mu.Lock()
	stage, space := s.stage, s.spaceID
	s.mu.Unlock()
	if stage != StageJoined {
		return
	}

	var p proto.SignalPayload
	if err := env.Bind(&p); err != nil || p.ToUserID == "" {
		log.Warn().Str("module", "app.session").Str("sid", string(s.id)).Str("type", env.Type).Msg("bad signal payload")
		return
	}
	s.deps.Relay.Forward(space, s, env.Type, p)
}

// Destroy tears the session down. Idempotent: a close racing a redundant
// leave broadcasts user-left at most once. Safe to call concurrently
// with in-flight sends.
func (s *Session) Destroy() {
	s.mu.Lock()
	stage := s.stage
	s.stage = StageClosed
	uid, space := s.userID, s.spaceID
	s.mu.Unlock()

	if stage == StageJoined {
		s.deps.Rooms.Remove(space, s)
		if frame, err := proto.Marshal(proto.TypeUserLeft, proto.UserLeft{ID: string(s.id), UserID: uid}); err == nil {
			s.deps.Rooms.Broadcast(space, frame, s.id)
		}
		if s.deps.Chat != nil {
			s.deps.Chat.Forget(s.id)
		}
		log.Info().Str("module", "app.session").Str("sid", string(s.id)).Str("user", string(uid)).Str("space", string(space)).Msg("session left")
	}
	s.conn.Close()
}

func (s *Session) send(typ string, payload any) {
	frame, err := proto.Marshal(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.session").Str("type", typ).Msg("marshal reply")
		return
	}
	if err := s.conn.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Str("type", typ).Msg("send drop")
	}
}

func presenceOf(m core.Member) proto.Presence {
	x, y := m.Position()
	return proto.Presence{ID: string(m.ID()), UserID: m.UserID(), X: x, Y: y, AvatarKind: m.Avatar()}
}

func randomCell(extent, step int) int {
	if step <= 0 {
		return 0
	}
	cells := extent / step
	if cells < 1 {
		return 0
	}
	return rand.Intn(cells) * step
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
