package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-habit-engine/internal/core/domain"
)

// ErrInvalidToken covers every reason a bearer token is refused: bad
// signature, wrong issuer, expiry, or an owner that no longer exists.
var ErrInvalidToken = errors.New("invalid token")

const ownerLookupTimeout = 2 * time.Second

// TokenService issues and verifies HS256 access tokens. The subject is the
// user ID that scopes every habit query.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	users     domain.UserRepository
	now       func() time.Time
}

func NewTokenService(secretKey string, issuer string, ttl time.Duration, users domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
		users:     users,
		now:       time.Now,
	}
}

func (s *TokenService) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the user ID carried by a token. A store failure
// while looking the owner up is returned unwrapped so callers can tell an
// outage from a bad token.
func (s *TokenService) ValidateToken(ctx context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	ctx, cancel := context.WithTimeout(ctx, ownerLookupTimeout)
	defer cancel()

	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("%w: owner %s no longer exists", ErrInvalidToken, claims.Subject)
		}
		return "", fmt.Errorf("token service: owner lookup failed: %w", err)
	}

	return claims.Subject, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secretKey, nil
}
