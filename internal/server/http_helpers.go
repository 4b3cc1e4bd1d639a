package server

import (
	"net/http"

	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

func writeMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": message,
	})
}

// writeError maps err to a status code through its catalog kind. Anything
// unclassified is a 500 and gets logged.
func writeError(c *gin.Context, s *Server, err error) {
	kind := catalog.KindOf(err)
	status := catalog.Status(kind)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	writeMessage(c, status, catalog.Message(err))
}
