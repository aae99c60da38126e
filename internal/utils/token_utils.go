package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateStateToken signs the OAuth `state` value handed to Xero's authorize endpoint.
// The subject carries the company id; a random jti makes each state single-purpose.
func GenerateStateToken(companyID int64, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	nonce, err := GenerateSecureRandomString(16)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(companyID, 10),
		ID:        nonce,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseStateToken verifies a state token and returns the company id it was issued for.
func ParseStateToken(tokenString string, secret string, issuer string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenSignatureInvalid
	}

	companyID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || companyID <= 0 {
		return 0, fmt.Errorf("state token has invalid subject %q", claims.Subject)
	}
	return companyID, nil
}
