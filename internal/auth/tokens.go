// Package auth issues and verifies the HS256 access and refresh tokens used
// by the API.
package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

type TokenType string

const (
	Access  TokenType = "access"
	Refresh TokenType = "refresh"
)

type Claims struct {
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is what a login or refresh hands back.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET missing")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		revoked:    make(map[string]time.Time),
	}, nil
}

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) Issue(u *models.User) (*Pair, error) {
	now := m.now()
	access, accessExp, err := m.sign(u, Access, now, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.sign(u, Refresh, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(u *models.User, typ TokenType, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, apperr.Storage(err, "sign %s token", typ)
	}
	return s, exp, nil
}

// Verify parses token and checks signature, expiry, type and revocation.
// Every failure is an Auth error.
func (m *Manager) Verify(token string, typ TokenType) (*Claims, error) {
	claims, err := m.parse(token, typ)
	if err != nil {
		return nil, err
	}
	if m.isRevoked(claims.ID) {
		return nil, apperr.Auth("%s token revoked", typ)
	}
	return claims, nil
}

// Redeem verifies token and revokes it in the same step, so of several
// concurrent callers presenting one token only the first succeeds.
func (m *Manager) Redeem(token string, typ TokenType) (*Claims, error) {
	claims, err := m.parse(token, typ)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.revoked[claims.ID]; ok {
		return nil, apperr.Auth("%s token revoked", typ)
	}
	m.revokeLocked(claims)
	return claims, nil
}

func (m *Manager) parse(token string, typ TokenType) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Auth("%s token expired", typ)
		}
		return nil, apperr.Auth("invalid %s token", typ)
	}
	if claims.Type != typ {
		return nil, apperr.Auth("invalid %s token", typ)
	}
	if claims.ID == "" {
		return nil, apperr.Auth("invalid %s token", typ)
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *Manager) Revoke(c *Claims) {
	if c == nil || c.ID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokeLocked(c)
}

// revokeLocked needs m.mu held.
func (m *Manager) revokeLocked(c *Claims) {
	exp := m.now().Add(m.refreshTTL)
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	now := m.now()
	for id, until := range m.revoked {
		if now.After(until) {
			delete(m.revoked, id)
		}
	}
	m.revoked[c.ID] = exp
}

func (m *Manager) isRevoked(jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok
}
