// Package shopify verifies the session tokens Shopify issues to embedded
// apps. Each request from the admin surface carries a short-lived HS256 JWT
// signed with the app's API secret; cookies are not usable inside the
// embedded iframe.
package shopify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid session token")

	// ErrWrongAudience signals a token minted for a different app.
	ErrWrongAudience = errors.New("session token audience mismatch")
)

// TokenVerifier validates embedded-app session tokens and extracts the
// owning shop domain.
type TokenVerifier struct {
	apiKey    string
	apiSecret string
}

func NewTokenVerifier(apiKey, apiSecret string) *TokenVerifier {
	return &TokenVerifier{apiKey: apiKey, apiSecret: apiSecret}
}

// VerifySessionToken checks the token's signature, expiry, and audience, and
// returns the shop domain from the dest claim (e.g. "example.myshopify.com").
func (v *TokenVerifier) VerifySessionToken(token string) (string, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(v.apiSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	audience, err := claims.GetAudience()
	if err != nil || len(audience) == 0 || audience[0] != v.apiKey {
		return "", ErrWrongAudience
	}

	dest, _ := claims["dest"].(string)
	shop := strings.TrimPrefix(dest, "https://")
	if shop == "" || !strings.Contains(shop, ".") {
		return "", fmt.Errorf("%w: missing or malformed dest claim", ErrInvalidToken)
	}

	return shop, nil
}
