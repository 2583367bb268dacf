package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/auth"
	"finance-ledger-go/internal/models"
)

const (
	refreshCookie     = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// Auth Response Wrapper
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	User        *models.User `json:"user,omitempty"`
}

// issue writes the refresh cookie and the access token body.
func (s *Server) issue(c *gin.Context, status int, u *models.User, withUser bool) {
	pair, err := s.tokens.Issue(u)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setRefreshCookie(c, pair.RefreshToken, int(s.tokens.RefreshTTL().Seconds()))

	res := AuthResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
	}
	if withUser {
		res.User = u
	}
	c.JSON(status, res)
}

func (s *Server) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, value, maxAge, refreshCookiePath, "", s.cfg.CookieSecure, true)
}

// POST /api/v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.bind(c, schemaLogin, &input) {
		return
	}

	u, err := s.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.Info("user logged in", "request_id", requestID(c), "user_id", u.ID)
	s.issue(c, 200, u, true)
}

// POST /api/v1/auth/refresh
// The old refresh token is revoked; each one can be used once.
func (s *Server) authRefresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		s.fail(c, apperr.Auth("refresh token missing"))
		return
	}
	claims, err := s.tokens.Redeem(token, auth.Refresh)
	if err != nil {
		s.fail(c, err)
		return
	}

	u, err := s.users.Get(c.Request.Context(), claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		s.fail(c, apperr.Auth("user no longer exists"))
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	s.issue(c, 200, u, false)
}

// POST /api/v1/auth/logout
// Revokes whatever valid tokens the caller presents and clears the cookie.
func (s *Server) authLogout(c *gin.Context) {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		if claims, err := s.tokens.Verify(token, auth.Refresh); err == nil {
			s.tokens.Revoke(claims)
		}
	}
	if token, ok := bearer(c.GetHeader("Authorization")); ok {
		if claims, err := s.tokens.Verify(token, auth.Access); err == nil {
			s.tokens.Revoke(claims)
		}
	}

	s.setRefreshCookie(c, "", -1)
	c.JSON(200, gin.H{"message": "logged out"})
}
