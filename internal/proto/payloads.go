package proto

import (
	"encoding/json"

	"github.com/dkeye/Plaza/internal/domain"
)

// Inbound payloads.

type JoinPayload struct {
	SpaceID string `json:"spaceId"`
	Token   string `json:"token"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

type MovePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SignalPayload covers rtc-offer, rtc-answer and rtc-ice. The sdp and
// candidate bodies are opaque to the server and relayed verbatim.
type SignalPayload struct {
	ToUserID  string          `json:"toUserId"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Outbound payloads.

// Presence is one occupant as seen by clients: session id, identity,
// grid position and avatar tag.
type Presence struct {
	ID         string        `json:"id"`
	UserID     domain.UserID `json:"userId"`
	X          int           `json:"x"`
	Y          int           `json:"y"`
	AvatarKind string        `json:"avatarKind"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type SpaceJoined struct {
	Self  Presence   `json:"self"`
	Spawn Point      `json:"spawn"`
	Users []Presence `json:"users"`
}

// ReasonAlreadyInSpace: the authenticated identity already has a live
// session in that room.
const ReasonAlreadyInSpace = "already-in-space"

type JoinRejected struct {
	Reason string `json:"reason"`
}

type MovementRejected struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	AvatarKind string `json:"avatarKind"`
}

type Chat struct {
	UserID  domain.UserID `json:"userId"`
	Message string        `json:"message"`
	TS      int64         `json:"ts"`
}

type Proximity struct {
	WithID     string        `json:"withId"`
	WithUserID domain.UserID `json:"withUserId"`
	Close      bool          `json:"close"`
}

// SignalForward is the relayed copy of a SignalPayload, re-tagged with
// the sender's identity.
type SignalForward struct {
	FromUserID domain.UserID   `json:"fromUserId"`
	SDP        json.RawMessage `json:"sdp,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
}

type UserLeft struct {
	ID     string        `json:"id"`
	UserID domain.UserID `json:"userId"`
}
