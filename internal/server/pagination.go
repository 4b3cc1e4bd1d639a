package server

import (
	"strconv"
	"strings"

	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// parsePagination returns zero values when neither page nor per_page is
// given, which lists everything.
func parsePagination(c *gin.Context, defaultPerPage, maxPerPage int) (int, int) {
	rawPage := strings.TrimSpace(c.Query("page"))
	rawPerPage := strings.TrimSpace(c.Query("per_page"))
	if rawPage == "" && rawPerPage == "" {
		return 0, 0
	}
	page := 1
	perPage := defaultPerPage
	if rawPage != "" {
		if value, err := strconv.Atoi(rawPage); err == nil && value > 0 {
			page = value
		}
	}
	if rawPerPage != "" {
		if value, err := strconv.Atoi(rawPerPage); err == nil && value > 0 {
			perPage = value
		}
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// listOptions reads paging and the optional gameID filter.
func (s *Server) listOptions(c *gin.Context) (catalog.ListOptions, bool) {
	var opts catalog.ListOptions
	opts.Page, opts.PerPage = parsePagination(c, defaultPerPage, maxPerPage)
	if raw, ok := c.GetQuery("gameID"); ok {
		id, err := catalog.ParseID(raw, "game")
		if err != nil {
			writeError(c, s, err)
			return opts, false
		}
		opts.GameID = id
	}
	return opts, true
}
