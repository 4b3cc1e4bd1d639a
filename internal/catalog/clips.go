package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type ClipInput struct {
	ClipTitle string `json:"clipTitle" binding:"notblank"`
	ClipURL   string `json:"clipURL"`
	MediaType string `json:"mediaType"`
	GameID    *int64 `json:"gameID"`
}

func (s *Service) ListClips(ctx context.Context, opts ListOptions) ([]Clip, error) {
	return listRows(ctx, s, s.store.Clips(), opts.query("clip_id"), "Clip", toClip)
}

func (s *Service) GetClip(ctx context.Context, id int64) (*Clip, error) {
	return getRow(ctx, s, s.store.Clips(), id, "Clip", toClip)
}

func (s *Service) CreateClip(ctx context.Context, p Principal, in ClipInput) (*Clip, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := requireText(in.ClipTitle, "Clip title required"); err != nil {
		return nil, err
	}
	row := db.Clip{
		GameID:    in.GameID,
		ClipTitle: strings.TrimSpace(in.ClipTitle),
		ClipURL:   in.ClipURL,
		MediaType: in.MediaType,
	}
	return insertRow(ctx, s, s.store.Clips(), &row, "Clip", toClip)
}

func (s *Service) UpdateClip(ctx context.Context, p Principal, id int64, patch map[string]any) (*Clip, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Clips(), clipFields, id, patch, "Clip", toClip)
}

func (s *Service) DeleteClip(ctx context.Context, p Principal, id int64) (DeleteResult[Clip], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Clip]{}, err
	}
	return deleteRow(ctx, s, s.store.Clips(), id, "Clip", toClip)
}
