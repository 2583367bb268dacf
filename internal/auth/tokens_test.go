package auth

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/models"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return m
}

var user = &models.User{ID: 7, Email: "ada@example.com"}

func TestIssueAndVerify(t *testing.T) {
	m := newManager(t)
	pair, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Verify(pair.AccessToken, Access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	_, err = m.Verify(pair.RefreshToken, Refresh)
	require.NoError(t, err)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))
}

func TestVerifyRejectsWrongType(t *testing.T) {
	m := newManager(t)
	pair, err := m.Issue(user)
	require.NoError(t, err)

	_, err = m.Verify(pair.RefreshToken, Access)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
	_, err = m.Verify(pair.AccessToken, Refresh)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newManager(t)
	issued := time.Now()
	m.now = func() time.Time { return issued }
	pair, err := m.Issue(user)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = m.Verify(pair.AccessToken, Access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	_, err = m.Verify(pair.RefreshToken, Refresh)
	assert.NoError(t, err)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	m := newManager(t)
	other, err := NewManager("another-secret", time.Minute, time.Hour)
	require.NoError(t, err)
	pair, err := other.Issue(user)
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, Access)
	assert.True(t, errors.Is(err, apperr.ErrAuth))

	_, err = m.Verify("not-a-token", Access)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	m := newManager(t)
	claims := &Claims{UserID: 1, Type: Access, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(token, Access)
	assert.True(t, errors.Is(err, apperr.ErrAuth))
}

func TestRevoke(t *testing.T) {
	m := newManager(t)
	pair, err := m.Issue(user)
	require.NoError(t, err)
	claims, err := m.Verify(pair.RefreshToken, Refresh)
	require.NoError(t, err)

	m.Revoke(claims)
	_, err = m.Verify(pair.RefreshToken, Refresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	// a fresh pair is unaffected
	again, err := m.Issue(user)
	require.NoError(t, err)
	_, err = m.Verify(again.RefreshToken, Refresh)
	assert.NoError(t, err)
}

func TestRedeemIsSingleUse(t *testing.T) {
	m := newManager(t)
	pair, err := m.Issue(user)
	require.NoError(t, err)

	_, err = m.Redeem(pair.AccessToken, Refresh)
	assert.True(t, errors.Is(err, apperr.ErrAuth))

	var redeemed atomic.Int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			if _, err := m.Redeem(pair.RefreshToken, Refresh); err == nil {
				redeemed.Add(1)
			} else if !errors.Is(err, apperr.ErrAuth) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, redeemed.Load())

	_, err = m.Verify(pair.RefreshToken, Refresh)
	assert.Contains(t, err.Error(), "revoked")
}

func TestNewManagerNeedsSecret(t *testing.T) {
	_, err := NewManager("", time.Minute, time.Hour)
	assert.Error(t, err)
}
