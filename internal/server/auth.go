package server

import (
	"errors"
	"net/http"

	"crimson-db/internal/auth"
	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

const principalKey = "crimson.principal"

// requireSession resolves the session principal or stops with 401.
func (s *Server) requireSession(c *gin.Context) {
	principal, err := s.auth.Authenticate(c.Request.Context(), sessionToken(c.Request))
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			s.logger.ErrorContext(c.Request.Context(), "session lookup failed", "error", err)
		}
		writeMessage(c, http.StatusUnauthorized, "Unauthorized")
		c.Abort()
		return
	}
	c.Set(principalKey, principal)
	c.Next()
}

func principalFrom(c *gin.Context) catalog.Principal {
	if value, ok := c.Get(principalKey); ok {
		if principal, ok := value.(catalog.Principal); ok {
			return principal
		}
	}
	return catalog.Principal{}
}
