package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is what the token service vouches for on an authenticated request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenAuthenticator validates bearer tokens minted by the identity provider.
type TokenAuthenticator interface {
	Authenticate(token string) (Identity, error)
}

type HMACTokenAuthenticator struct {
	key []byte
}

func NewHMACTokenAuthenticator(secret string) *HMACTokenAuthenticator {
	return &HMACTokenAuthenticator{key: []byte(secret)}
}

func (a *HMACTokenAuthenticator) Authenticate(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad user_id claim", ErrUnauthorized)
	}

	return Identity{UserID: userID, Email: claims.Email, Name: claims.Name}, nil
}

// CreateToken mints a token in the identity provider's format for tests;
// production tokens are issued elsewhere.
func (a *HMACTokenAuthenticator) CreateToken(id Identity, ttl time.Duration) (string, error) {
	if id.UserID == uuid.Nil {
		return "", errors.New("user id is required")
	}
	claims := &Claims{
		UserID: id.UserID.String(),
		Email:  id.Email,
		Name:   id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}
