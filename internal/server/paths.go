package server

import (
	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive integer path parameter, writing a 400 when it
// is not one.
func (s *Server) pathID(c *gin.Context, param, label string) (int64, bool) {
	id, err := catalog.ParseID(c.Param(param), label)
	if err != nil {
		writeError(c, s, err)
		return 0, false
	}
	return id, true
}
