package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names that may carry the user id, in lookup order. The long form is
// the identity claim issued by .NET backends.
var userIDClaims = []string{
	"userId",
	"uid",
	"nameid",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
	"sub",
}

var emailClaims = []string{
	"email",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
}

// DecodedToken is what the client reads out of an access token.
type DecodedToken struct {
	UserID    string
	Email     string
	ExpiresAt int64 // epoch seconds
}

// DecodeToken reads the claims of a JWT without verifying its signature.
// The server verifies tokens; the client only needs the user id and expiry.
func DecodeToken(raw string) (DecodedToken, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return DecodedToken{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID := firstString(claims, userIDClaims)
	if userID == "" {
		return DecodedToken{}, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return DecodedToken{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if exp == nil {
		return DecodedToken{}, fmt.Errorf("%w: no exp claim", ErrInvalidToken)
	}

	return DecodedToken{
		UserID:    userID,
		Email:     firstString(claims, emailClaims),
		ExpiresAt: exp.Unix(),
	}, nil
}

func firstString(claims jwt.MapClaims, names []string) string {
	for _, name := range names {
		if v, ok := claims[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
