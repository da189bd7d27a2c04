// Package auth issues and validates the signed session tokens used by
// the HTTP API.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the registered issuer of access tokens.
	Issuer = "sweax"
	// AccessTokenDuration is the lifetime of a session token.
	AccessTokenDuration = 7 * 24 * time.Hour
	// CookieName is the cookie carrying the access token.
	CookieName = "sweax.access-token"
)

type claims struct {
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for the given user ID.
func GenerateAccessToken(userID int32, secret string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// ValidateAccessToken verifies the signature and expiry of a token and
// returns the user ID it was issued for.
func ValidateAccessToken(tokenString, secret string) (int32, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return 0, errors.Wrap(err, "invalid access token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid access token claims")
	}
	userID, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, errors.Wrap(err, "invalid access token subject")
	}
	return int32(userID), nil
}
