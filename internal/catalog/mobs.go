package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type MobInput struct {
	MobName      string `json:"mobName" binding:"notblank"`
	MobType      string `json:"mobType"`
	Description  string `json:"description"`
	Weakness     string `json:"weakness"`
	MobSpriteURL string `json:"mobSpriteURL"`
	SpawnNotes   string `json:"spawnNotes"`
	GameID       int64  `json:"gameID" binding:"gt=0"`
}

const mobRequiredMessage = "Mob name and game ID required"

func (s *Service) ListMobs(ctx context.Context, opts ListOptions) ([]Mob, error) {
	return listRows(ctx, s, s.store.Mobs(), opts.query("mob_id"), "Mob", toMob)
}

func (s *Service) GetMob(ctx context.Context, id int64) (*Mob, error) {
	return getRow(ctx, s, s.store.Mobs(), id, "Mob", toMob)
}

func (s *Service) CreateMob(ctx context.Context, p Principal, in MobInput) (*Mob, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.MobName) == "" || in.GameID <= 0 {
		return nil, newError(MissingRequiredField, mobRequiredMessage)
	}
	row := db.Mob{
		GameID:       in.GameID,
		MobName:      strings.TrimSpace(in.MobName),
		MobType:      in.MobType,
		Description:  in.Description,
		Weakness:     in.Weakness,
		MobSpriteURL: in.MobSpriteURL,
		SpawnNotes:   in.SpawnNotes,
	}
	return insertRow(ctx, s, s.store.Mobs(), &row, "Mob", toMob)
}

func (s *Service) UpdateMob(ctx context.Context, p Principal, id int64, patch map[string]any) (*Mob, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Mobs(), mobFields, id, patch, "Mob", toMob)
}

func (s *Service) DeleteMob(ctx context.Context, p Principal, id int64) (DeleteResult[Mob], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Mob]{}, err
	}
	return deleteRow(ctx, s, s.store.Mobs(), id, "Mob", toMob)
}
