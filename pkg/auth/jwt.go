package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/segyhp/xp-lending/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	UserID    string
	Email     *string
	FirstName *string
	LastName  *string
	ExpiresAt time.Time
}

type customClaims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTService verifies HS256 bearer tokens and issues them for tooling and tests.
type JWTService struct {
	cfg config.AuthConfig
	now func() time.Time
}

func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{cfg: cfg, now: time.Now}
}

func (s *JWTService) tokenTTL() time.Duration {
	if s.cfg.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return s.cfg.TokenTTL
}

// GenerateToken signs a token for identity.
func (s *JWTService) GenerateToken(identity Identity) (string, error) {
	if identity.UserID == "" {
		return "", fmt.Errorf("invalid identity payload")
	}

	now := s.now()
	claims := &customClaims{
		Email:     deref(identity.Email),
		FirstName: deref(identity.FirstName),
		LastName:  deref(identity.LastName),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses token and returns the caller's identity.
func (s *JWTService) ValidateToken(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &customClaims{}
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
	}
	if iss := strings.TrimSpace(s.cfg.Issuer); iss != "" {
		options = append(options, jwt.WithIssuer(iss))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := &Identity{
		UserID:    claims.Subject,
		Email:     optional(claims.Email),
		FirstName: optional(claims.FirstName),
		LastName:  optional(claims.LastName),
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
