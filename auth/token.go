package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds the claims of a dotCMS API token that matter to a client.
type TokenInfo struct {
	// Subject is the user the token was issued for (sub claim).
	Subject string

	// Issuer is the dotCMS cluster that issued the token (iss claim).
	Issuer string

	// ID is the token identifier (jti claim).
	ID string

	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time

	// IssuedAt is zero when the token carries no iat claim.
	IssuedAt time.Time
}

// IsExpired reports whether the token has expired at now.
func (ti TokenInfo) IsExpired(now time.Time) bool {
	if ti.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(ti.ExpiresAt)
}

// ExpiresWithin reports whether the token expires in less than d from now.
func (ti TokenInfo) ExpiresWithin(now time.Time, d time.Duration) bool {
	if ti.ExpiresAt.IsZero() {
		return false
	}
	return ti.ExpiresAt.Sub(now) < d
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// The signing key lives on the dotCMS server; the client only needs the
// expiry to report a stale token early.
func InspectToken(token string) (TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return TokenInfo{}, ErrMissingCredentials
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	info := TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		ID:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}

// CheckToken returns ErrTokenExpired when token has expired at now.
// Tokens that are not JWTs are reported as ErrTokenMalformed.
func CheckToken(token string, now time.Time) (TokenInfo, error) {
	info, err := InspectToken(token)
	if err != nil {
		return info, err
	}
	if info.IsExpired(now) {
		return info, fmt.Errorf("%w at %s", ErrTokenExpired, info.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return info, nil
}
