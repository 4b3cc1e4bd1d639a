package server

import (
	"net/http"

	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListGames(c *gin.Context) {
	opts, ok := s.listOptions(c)
	if !ok {
		return
	}
	games, err := s.catalog.ListGames(c.Request.Context(), opts)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) handleGetGame(c *gin.Context) {
	id, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	game, err := s.catalog.GetGame(c.Request.Context(), id)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req catalog.GameInput
	if !bindJSON(c, &req, nil, "Title and release date required") {
		return
	}
	game, err := s.catalog.CreateGame(c.Request.Context(), principalFrom(c), req)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

func (s *Server) handleUpdateGame(c *gin.Context) {
	id, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	game, err := s.catalog.UpdateGame(c.Request.Context(), principalFrom(c), id, patch)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	id, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	result, err := s.catalog.DeleteGame(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type characterLinkRequest struct {
	CharacterID int64 `json:"characterID" binding:"gt=0"`
}

func (s *Server) handleLinkCharacter(c *gin.Context) {
	gameID, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	var req characterLinkRequest
	if !bindJSON(c, &req, nil, "Character ID required") {
		return
	}
	link, err := s.catalog.LinkCharacter(c.Request.Context(), principalFrom(c), gameID, req.CharacterID)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) handleUnlinkCharacter(c *gin.Context) {
	gameID, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	characterID, ok := s.pathID(c, "characterId", "character")
	if !ok {
		return
	}
	result, err := s.catalog.UnlinkCharacter(c.Request.Context(), principalFrom(c), gameID, characterID)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLinkContributor(c *gin.Context) {
	gameID, ok := s.pathID(c, "id", "game")
	if !ok {
		return
	}
	var req catalog.ContributorLinkInput
	if !bindJSON(c, &req, bindMessages{
		"ContributorID": {"gt": "Contributor ID required"},
		"RoleID":        {"gt": "Role ID required"},
	}, "Contributor ID and role ID required") {
		return
	}
	link, err := s.catalog.LinkContributor(c.Request.Context(), principalFrom(c), gameID, req)
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) handleListRoles(c *gin.Context) {
	roles, err := s.catalog.ListRoles(c.Request.Context())
	if err != nil {
		writeError(c, s, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
