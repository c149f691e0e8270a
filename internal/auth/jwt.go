// File: internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is what a validated session token carries.
type Claims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// GenerateJWT signs a token for userID that expires after ttl.
func GenerateJWT(userID string, ttl time.Duration, secretKey []byte) (string, Claims, error) {
	if userID == "" {
		return "", Claims{}, errors.New("user ID cannot be empty")
	}
	if len(secretKey) == 0 {
		return "", Claims{}, errors.New("secret key cannot be empty")
	}

	now := time.Now()
	c := Claims{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(ttl),
	}
	claims := jwt.MapClaims{
		"sub": c.UserID,
		"jti": c.TokenID,
		"iat": now.Unix(),
		"exp": c.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", Claims{}, err
	}
	return tokenString, c, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
func ValidateToken(tokenString string, secretKey []byte) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return Claims{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || jti == "" {
		return Claims{}, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: sub, TokenID: jti, ExpiresAt: exp.Time}, nil
}
