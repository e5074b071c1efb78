// Package domain contains entities without logic, just meta-data
package domain

import "errors"

var (
	ErrSpaceNotFound   = errors.New("space not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateUser   = errors.New("user already in space")
)

// UserID is the durable, authenticated identity behind a connection.
// Distinct from the per-connection session id.
type UserID string

type User struct {
	ID         UserID `json:"id"`
	AvatarKind string `json:"avatarKind"`
}
