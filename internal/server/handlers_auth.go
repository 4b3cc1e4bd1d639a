package server

import (
	"errors"
	"net/http"

	"crimson-db/internal/account"
	"crimson-db/internal/auth"
	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"notblank"`
	Password string `json:"password" binding:"notblank"`
}

type resetRequest struct {
	Email string `json:"email" binding:"notblank"`
}

type resetConfirmRequest struct {
	Token    string `json:"token" binding:"notblank"`
	Password string `json:"password" binding:"notblank"`
}

var credentialMessages = bindMessages{
	"Email":    {"notblank": "Email is required"},
	"Password": {"notblank": "Password is required"},
}

// authError maps identity provider failures onto catalog kinds.
func authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidResetToken):
		return &catalog.Error{Kind: catalog.MissingRequiredField, Message: err.Error(), Err: err}
	case errors.Is(err, auth.ErrEmailTaken):
		return &catalog.Error{Kind: catalog.Conflict, Message: err.Error(), Err: err}
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession):
		return &catalog.Error{Kind: catalog.Unauthorized, Message: err.Error(), Err: err}
	default:
		return err
	}
}

func (s *Server) handleSignUp(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, credentialMessages, "Email and password are required") {
		return
	}
	ctx := c.Request.Context()
	var profile *account.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		principal, err := s.auth.WithTx(tx).SignUp(ctx, req.Email, req.Password)
		if err != nil {
			return authError(err)
		}
		profile, err = s.accounts.WithTx(tx).CreateProfile(ctx, principal)
		return err
	})
	if err != nil {
		writeError(c, s, err)
		return
	}
	s.logger.InfoContext(ctx, "account created", "user_id", profile.UserID)
	c.JSON(http.StatusCreated, profile)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, credentialMessages, "Email and password are required") {
		return
	}
	session, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, s, authError(err))
		return
	}
	s.setSessionCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"userID":    session.Principal.UserID,
		"email":     session.Principal.Email,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.SignOut(c.Request.Context(), sessionToken(c.Request)); err != nil {
		writeError(c, s, err)
		return
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handlePasswordReset answers the same way whether or not the email has an
// account.
func (s *Server) handlePasswordReset(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req, nil, "Email is required") {
		return
	}
	if err := s.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.logger.WarnContext(c.Request.Context(), "password reset request failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If that email has an account, a reset link is on its way."})
}

func (s *Server) handlePasswordResetConfirm(c *gin.Context) {
	var req resetConfirmRequest
	if !bindJSON(c, &req, bindMessages{
		"Token":    {"notblank": "Reset token is required"},
		"Password": {"notblank": "Password is required"},
	}, "Reset token and password are required") {
		return
	}
	if err := s.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, s, authError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
