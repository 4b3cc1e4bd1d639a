package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type MapInput struct {
	MapName     string `json:"mapName" binding:"notblank"`
	FloorName   string `json:"floorName"`
	Description string `json:"description"`
	MapURL      string `json:"mapURL"`
	GameID      int64  `json:"gameID" binding:"gt=0"`
}

const mapRequiredMessage = "Map name and game ID required"

func (s *Service) ListMaps(ctx context.Context, opts ListOptions) ([]Map, error) {
	return listRows(ctx, s, s.store.Maps(), opts.query("map_id"), "Map", toMap)
}

func (s *Service) GetMap(ctx context.Context, id int64) (*Map, error) {
	return getRow(ctx, s, s.store.Maps(), id, "Map", toMap)
}

func (s *Service) CreateMap(ctx context.Context, p Principal, in MapInput) (*Map, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.MapName) == "" || in.GameID <= 0 {
		return nil, newError(MissingRequiredField, mapRequiredMessage)
	}
	row := db.Map{
		GameID:      in.GameID,
		MapName:     strings.TrimSpace(in.MapName),
		FloorName:   in.FloorName,
		Description: in.Description,
		MapURL:      in.MapURL,
	}
	return insertRow(ctx, s, s.store.Maps(), &row, "Map", toMap)
}

func (s *Service) UpdateMap(ctx context.Context, p Principal, id int64, patch map[string]any) (*Map, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Maps(), mapFields, id, patch, "Map", toMap)
}

func (s *Service) DeleteMap(ctx context.Context, p Principal, id int64) (DeleteResult[Map], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Map]{}, err
	}
	return deleteRow(ctx, s, s.store.Maps(), id, "Map", toMap)
}
