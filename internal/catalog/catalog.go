// Package catalog resolves spaces and user profiles at join time.
// Results are cached on the session afterwards, so lookups happen at
// most once per connection.
package catalog

import (
	"context"

	"github.com/dkeye/Plaza/internal/domain"
)

// Spaces is the space catalog: existence plus grid bounds.
type Spaces interface {
	Space(ctx context.Context, id domain.SpaceID) (*domain.Space, error)
}

// Profiles resolves the presentation tag for an identity.
type Profiles interface {
	AvatarOf(ctx context.Context, id domain.UserID) (string, error)
}
