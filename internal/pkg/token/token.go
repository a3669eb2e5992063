// Package token issues and verifies the signed claim tokens used for API
// authentication. Access and refresh tokens share one claim shape but are
// signed with distinct secrets, so compromising one secret cannot mint tokens
// of the other kind.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"

	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var ErrMissingSecret = errors.New("token: signing secret not configured")
var ErrInvalidToken = errors.New("invalid token")
var ErrTokenExpired = errors.New("token expired")
var ErrWrongTokenKind = errors.New("wrong token kind")

// Config holds the signing material and lifetimes for a Manager.
// Zero TTLs fall back to the defaults.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Manager signs and verifies access and refresh tokens with HS256.
// It is immutable after construction and safe for concurrent use.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewManager validates the config and returns a Manager. Missing secrets are
// a configuration error: callers are expected to fail at startup, not at the
// first request.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// IssueAccess signs an access token carrying the given identity claims plus
// exp, iat, and type.
func (m *Manager) IssueAccess(claims jwt.MapClaims) (string, error) {
	return m.issue(claims, KindAccess, m.accessTTL, m.accessSecret)
}

// IssueRefresh signs a refresh token carrying the given identity claims plus
// exp, iat, and type.
func (m *Manager) IssueRefresh(claims jwt.MapClaims) (string, error) {
	return m.issue(claims, KindRefresh, m.refreshTTL, m.refreshSecret)
}

func (m *Manager) issue(claims jwt.MapClaims, kind string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	merged := jwt.MapClaims{}
	for k, v := range claims {
		merged[k] = v
	}
	merged["exp"] = now.Add(ttl).Unix()
	merged["iat"] = now.Unix()
	merged["type"] = kind

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, merged)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// VerifyAccess checks signature, expiry, and token kind, returning the claims
// on success.
func (m *Manager) VerifyAccess(token string) (jwt.MapClaims, error) {
	return m.verify(token, KindAccess, m.accessSecret)
}

// VerifyRefresh checks signature, expiry, and token kind, returning the
// claims on success.
func (m *Manager) VerifyRefresh(token string) (jwt.MapClaims, error) {
	return m.verify(token, KindRefresh, m.refreshSecret)
}

func (m *Manager) verify(token, kind string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if got, _ := claims["type"].(string); got != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}
