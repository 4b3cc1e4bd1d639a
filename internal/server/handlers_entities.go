package server

import (
	"context"
	"net/http"

	"crimson-db/internal/catalog"

	"github.com/gin-gonic/gin"
)

// The child entities share one handler shape; these build it from the
// matching catalog operations.

func listHandler[T any](s *Server, key string, list func(context.Context, catalog.ListOptions) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, ok := s.listOptions(c)
		if !ok {
			return
		}
		rows, err := list(c.Request.Context(), opts)
		if err != nil {
			writeError(c, s, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{key: rows})
	}
}

func getHandler[T any](s *Server, label string, get func(context.Context, int64) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.pathID(c, "id", label)
		if !ok {
			return
		}
		row, err := get(c.Request.Context(), id)
		if err != nil {
			writeError(c, s, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func createHandler[In, T any](s *Server, messages bindMessages, fallback string, create func(context.Context, catalog.Principal, In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req In
		if !bindJSON(c, &req, messages, fallback) {
			return
		}
		row, err := create(c.Request.Context(), principalFrom(c), req)
		if err != nil {
			writeError(c, s, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	}
}

func updateHandler[T any](s *Server, label string, update func(context.Context, catalog.Principal, int64, map[string]any) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.pathID(c, "id", label)
		if !ok {
			return
		}
		patch, ok := bindPatch(c)
		if !ok {
			return
		}
		row, err := update(c.Request.Context(), principalFrom(c), id, patch)
		if err != nil {
			writeError(c, s, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func deleteHandler[T any](s *Server, label string, remove func(context.Context, catalog.Principal, int64) (catalog.DeleteResult[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.pathID(c, "id", label)
		if !ok {
			return
		}
		result, err := remove(c.Request.Context(), principalFrom(c), id)
		if err != nil {
			writeError(c, s, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// entityRoutes registers the list/get/create/update/delete set for one
// entity. Reads go on public, writes on authed.
type entityRoutes struct {
	path   string
	list   gin.HandlerFunc
	get    gin.HandlerFunc
	create gin.HandlerFunc
	update gin.HandlerFunc
	remove gin.HandlerFunc
}

func (r entityRoutes) register(public, authed gin.IRoutes) {
	public.GET(r.path, r.list)
	public.GET(r.path+"/:id", r.get)
	authed.POST(r.path, r.create)
	authed.PUT(r.path+"/:id", r.update)
	authed.DELETE(r.path+"/:id", r.remove)
}

func (s *Server) entityRoutes() []entityRoutes {
	svc := s.catalog
	return []entityRoutes{
		{
			path:   "/characters",
			list:   listHandler(s, "characters", svc.ListCharacters),
			get:    getHandler(s, "character", svc.GetCharacter),
			create: createHandler(s, nil, "Character name required", svc.CreateCharacter),
			update: updateHandler(s, "character", svc.UpdateCharacter),
			remove: deleteHandler(s, "character", svc.DeleteCharacter),
		},
		{
			path:   "/maps",
			list:   listHandler(s, "maps", svc.ListMaps),
			get:    getHandler(s, "map", svc.GetMap),
			create: createHandler(s, nil, "Map name and game ID required", svc.CreateMap),
			update: updateHandler(s, "map", svc.UpdateMap),
			remove: deleteHandler(s, "map", svc.DeleteMap),
		},
		{
			path:   "/mobs",
			list:   listHandler(s, "mobs", svc.ListMobs),
			get:    getHandler(s, "mob", svc.GetMob),
			create: createHandler(s, nil, "Mob name and game ID required", svc.CreateMob),
			update: updateHandler(s, "mob", svc.UpdateMob),
			remove: deleteHandler(s, "mob", svc.DeleteMob),
		},
		{
			path:   "/story-arcs",
			list:   listHandler(s, "storyArcs", svc.ListStoryArcs),
			get:    getHandler(s, "story arc", svc.GetStoryArc),
			create: createHandler(s, nil, "Arc title and game ID required", svc.CreateStoryArc),
			update: updateHandler(s, "story arc", svc.UpdateStoryArc),
			remove: deleteHandler(s, "story arc", svc.DeleteStoryArc),
		},
		{
			path:   "/ratings",
			list:   listHandler(s, "ratings", svc.ListRatings),
			get:    getHandler(s, "rating", svc.GetRating),
			create: createHandler(s, nil, "Rating value and game ID are required", svc.CreateRating),
			update: updateHandler(s, "rating", svc.UpdateRating),
			remove: deleteHandler(s, "rating", svc.DeleteRating),
		},
		{
			path:   "/clips",
			list:   listHandler(s, "clips", svc.ListClips),
			get:    getHandler(s, "clip", svc.GetClip),
			create: createHandler(s, nil, "Clip title required", svc.CreateClip),
			update: updateHandler(s, "clip", svc.UpdateClip),
			remove: deleteHandler(s, "clip", svc.DeleteClip),
		},
		{
			path:   "/contributors",
			list:   listHandler(s, "contributors", svc.ListContributors),
			get:    getHandler(s, "contributor", svc.GetContributor),
			create: createHandler(s, nil, "Contributor name required", svc.CreateContributor),
			update: updateHandler(s, "contributor", svc.UpdateContributor),
			remove: deleteHandler(s, "contributor", svc.DeleteContributor),
		},
	}
}
