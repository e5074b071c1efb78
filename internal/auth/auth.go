// Package auth exchanges bearer tokens for verified identities.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Plaza/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultRole = "user"

// Identity is a verified token subject.
type Identity struct {
	UserID domain.UserID
	Role   string
}

// Verifier turns an opaque bearer token into an identity, failing closed
// on expiry, tampering or a missing subject.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWT verifies HMAC-signed tokens whose sub claim carries the user id
// and whose optional role claim carries the role.
type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

func (j *JWT) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only; anything else is treated as tampering.
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrInvalidToken
	}
	role := DefaultRole
	if r, ok := claims["role"].(string); ok && r != "" {
		role = r
	}
	return Identity{UserID: domain.UserID(sub), Role: role}, nil
}

// Sign mints a token for the given user. Used by tests and dev tooling;
// production tokens come from the external credential issuer with the
// same secret.
func (j *JWT) Sign(userID domain.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtlib.MapClaims{
		"sub":  string(userID),
		"role": DefaultRole,
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(j.secret)
}
