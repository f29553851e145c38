package testutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("tasktrack-test-key")

// MintToken returns an HS256 access token carrying the claims the client
// reads (userId, email, exp) plus a unique jti.
func MintToken(userID uuid.UUID, email string, exp time.Time) string {
	claims := jwt.MapClaims{
		"userId": userID.String(),
		"email":  email,
		"exp":    exp.Unix(),
		"iat":    exp.Add(-time.Hour).Unix(),
		"jti":    uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// MintTokenWithClaims signs arbitrary claims.
func MintTokenWithClaims(claims jwt.MapClaims) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}
