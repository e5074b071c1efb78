// Package proto defines the wire envelope and the fixed payload shapes
// exchanged with clients. Every frame is {"type": ..., "payload": {...}};
// the payload stays raw until the type is known.
package proto

import "encoding/json"

// Inbound frame types.
const (
	TypeJoin      = "join"
	TypeChat      = "chat"
	TypeMove      = "move"
	TypeRTCOffer  = "rtc-offer"
	TypeRTCAnswer = "rtc-answer"
	TypeRTCIce    = "rtc-ice"
	TypeLeave     = "leave"
)

// Outbound frame types.
const (
	TypeSpaceJoined      = "space-joined"
	TypeJoinRejected     = "join-rejected"
	TypeUserJoined       = "user-joined"
	TypeMovement         = "movement"
	TypeMovementRejected = "movement-rejected"
	TypeProximity        = "proximity"
	TypeUserLeft         = "user-left"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses the envelope only; per-type payload decoding is done by
// Bind once the dispatcher knows the type.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Envelope) Bind(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Marshal wraps a payload into an envelope frame ready to send.
func Marshal(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}
