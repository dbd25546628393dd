// Package auth inspects the API bearer token held by the client.
// Signatures are verified by the server; the client only reads the claims.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/keyring"
)

// TokenEnv overrides the keyring token when set.
const TokenEnv = "WEEKLIT_TOKEN"

// Claims is the subset of the token payload the client cares about.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token has passed its expiry at now.
// Tokens without an exp claim never expire client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes token without verifying its signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, fmt.Errorf("%w: missing bearer token", apperrors.ErrAuth)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: malformed token: %v", apperrors.ErrAuth, err)
	}

	out := Claims{}
	out.Subject, _ = claims.GetSubject()
	out.Email, _ = claims["email"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: bad exp claim: %v", apperrors.ErrAuth, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Check returns an ErrAuth-classified error when token is missing, malformed or expired at now.
func Check(token string, now time.Time) (Claims, error) {
	claims, err := Inspect(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.Expired(now) {
		return claims, fmt.Errorf("%w: token expired at %s", apperrors.ErrAuth, claims.ExpiresAt.Format(time.RFC3339))
	}
	return claims, nil
}

// Source supplies the current bearer token.
type Source interface {
	Token() (string, error)
}

// StaticSource always returns the same token.
type StaticSource string

func (s StaticSource) Token() (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: missing bearer token", apperrors.ErrAuth)
	}
	return string(s), nil
}

// KeyringSource reads the token from WEEKLIT_TOKEN, falling back to the OS keyring.
type KeyringSource struct{}

func (KeyringSource) Token() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	tok, err := keyring.GetToken()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: no token stored, run 'weeklit auth set-token'", apperrors.ErrAuth)
		}
		return "", err
	}
	return tok, nil
}
