package auth

import (
	"errors"
	"time"

	"stichting-asha/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity attached to an authenticated request.
type Session struct {
	UserID string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// DisplayName is used to stamp authorship. Anonymous sessions become
// "Anoniem".
func (s *Session) DisplayName() string {
	switch {
	case s == nil:
		return "Anoniem"
	case s.Name != "":
		return s.Name
	case s.Email != "":
		return s.Email
	}
	return "Anoniem"
}

type Claims struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() *Session {
	return &Session{
		UserID: c.UserID,
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
	}
}

type JWTManager struct {
	SecretKey []byte
	Duration  time.Duration
}

func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return &JWTManager{
		SecretKey: []byte(secretKey),
		Duration:  duration,
	}
}

func (j *JWTManager) GenerateToken(s Session) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: s.UserID,
		Name:   s.Name,
		Email:  s.Email,
		Role:   s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.SecretKey)
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.SecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	if !claims.Role.IsValid() {
		return nil, errors.New("invalid role in token")
	}

	return claims, nil
}

// SessionKey is the gin context key holding the *Session.
const SessionKey = "session"
