package store

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fincoach/internal/models"
)

// TokenIssuer signs and validates the bearer tokens returned by Login and
// Signup. The secret and expiry come from configuration; nothing here reads
// ambient state.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates a token issuer with the given HMAC secret and expiry.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Claims represents the claims carried in a bearer token.
type Claims struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// Generate issues a signed bearer token for the user.
func (i *TokenIssuer) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "fincoach",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate parses and verifies a bearer token, returning its claims.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
