package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tikaparse/internal/config"
	"tikaparse/internal/domain"
)

const audienceAPI = "tikaparse-api"

// Claims identifies an API client.
type Claims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// TokenManager issues and validates bearer tokens for API clients.
type TokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager from configuration.
func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		expiry: cfg.TokenExpiry,
		now:    time.Now,
	}
}

// Issue signs a token for client. A zero ttl uses the configured expiry.
func (m *TokenManager) Issue(client string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = m.expiry
	}
	now := m.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audienceAPI},
		},
		Client: client,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses tokenString and checks signature, expiry, issuer and audience.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(audienceAPI),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
