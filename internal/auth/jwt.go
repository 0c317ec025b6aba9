package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/errors"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the actor. The service only verifies
// tokens; issuing lives with the identity provider and with tests.
func GenerateToken(secret string, a *Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		UserID: a.UserID,
		Email:  a.Email,
		Role:   a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Unauthorizedf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Unauthorizedf("invalid token claims")
	}

	a := &Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
	if !a.Valid() {
		return nil, errors.Unauthorizedf("token has no user identity")
	}
	return a, nil
}
