package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dkeye/Plaza/internal/domain"
)

// Redis reads the catalog the HTTP/admin side maintains.
// space key: plaza:space:<id> (hash: width, height)
// avatar key: plaza:avatar:<user>
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func spaceKey(id domain.SpaceID) string { return "plaza:space:" + string(id) }
func avatarKey(id domain.UserID) string { return "plaza:avatar:" + string(id) }

func (r *Redis) Space(ctx context.Context, id domain.SpaceID) (*domain.Space, error) {
	vals, err := r.rdb.HGetAll(ctx, spaceKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("space lookup: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrSpaceNotFound
	}
	width, err := strconv.Atoi(vals["width"])
	if err != nil {
		return nil, fmt.Errorf("space %s: bad width: %w", id, err)
	}
	height, err := strconv.Atoi(vals["height"])
	if err != nil {
		return nil, fmt.Errorf("space %s: bad height: %w", id, err)
	}
	return &domain.Space{ID: id, Width: width, Height: height}, nil
}

func (r *Redis) AvatarOf(ctx context.Context, id domain.UserID) (string, error) {
	val, err := r.rdb.Get(ctx, avatarKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrProfileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("avatar lookup: %w", err)
	}
	return val, nil
}
