package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard-api/internal/core/domain"
)

// DefaultTokenTTL is the session lifetime baked into every issued token.
const DefaultTokenTTL = 24 * time.Hour

// TokenService signs and verifies HS256 session tokens. It holds no state
// beyond the secret, so issuance and verification are pure computation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

func NewTokenService(secret string, ttl time.Duration, log zerolog.Logger) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, log: log}
}

// Issue produces a signed token with the user id as subject and an
// expiration of now + TTL.
func (s *TokenService) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the subject user id.
// Tampered, malformed, and expired tokens are distinguished only in the
// debug log; callers always see domain.ErrUnauthorized.
func (s *TokenService) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		s.log.Debug().Err(err).Msg("token rejected")
		return "", domain.ErrUnauthorized
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		s.log.Debug().Msg("token missing subject")
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}
