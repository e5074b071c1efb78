package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/proto"
)

// Relay forwards WebRTC negotiation frames between two occupants of the
// same space. Stateless: it owns nothing beyond a read of the registry,
// never inspects sdp/candidate bodies and never buffers. A target that
// already left means a dropped frame; the caller's handshake times out
// and retries on its own.
type Relay struct {
	Rooms *Registry
}

func (r *Relay) Forward(space domain.SpaceID, from core.Member, typ string, p proto.SignalPayload) {
	target, ok := r.Rooms.FindByUser(space, domain.UserID(p.ToUserID))
	if !ok {
		log.Debug().Str("module", "app.relay").Str("space", string(space)).Str("type", typ).Str("to", p.ToUserID).Msg("target not present, dropping")
		return
	}
	frame, err := proto.Marshal(typ, proto.SignalForward{
		FromUserID: from.UserID(),
		SDP:        p.SDP,
		Candidate:  p.Candidate,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("type", typ).Msg("marshal forward")
		return
	}
	_ = target.Conn().TrySend(frame)
}
