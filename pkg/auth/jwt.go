package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService issues and checks the bearer tokens desk staff present to the API.
type JWTService interface {
	GenerateAccessToken(staffID string, ttl time.Duration) (string, error)
	ValidateToken(token string) (*jwt.RegisteredClaims, error)
}

type hmacService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService signs with HS256 under secret.
func NewJWTService(secret string) JWTService {
	return &hmacService{secret: []byte(secret), now: time.Now}
}

func (s *hmacService) GenerateAccessToken(staffID string, ttl time.Duration) (string, error) {
	if staffID == "" {
		return "", fmt.Errorf("staff ID is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   staffID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken rejects tokens without an expiry or a subject.
func (s *hmacService) ValidateToken(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
