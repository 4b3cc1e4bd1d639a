package db

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the tables and game-keyed lookups the catalog reads through.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) Conn() *gorm.DB { return s.conn }

func (s *Store) Games() Table[Game]               { return NewTable[Game](s.conn) }
func (s *Store) Characters() Table[Character]     { return NewTable[Character](s.conn) }
func (s *Store) Maps() Table[Map]                 { return NewTable[Map](s.conn) }
func (s *Store) Mobs() Table[Mob]                 { return NewTable[Mob](s.conn) }
func (s *Store) StoryArcs() Table[StoryArc]       { return NewTable[StoryArc](s.conn) }
func (s *Store) Ratings() Table[Rating]           { return NewTable[Rating](s.conn) }
func (s *Store) Clips() Table[Clip]               { return NewTable[Clip](s.conn) }
func (s *Store) Contributors() Table[Contributor] { return NewTable[Contributor](s.conn) }
func (s *Store) Roles() Table[Role]               { return NewTable[Role](s.conn) }

// GameCharacters returns the join rows for a game with the character preloaded.
// A link whose character row is gone comes back with a nil Character.
func (s *Store) GameCharacters(ctx context.Context, gameID int64) ([]GameCharacter, error) {
	links := make([]GameCharacter, 0)
	err := s.conn.WithContext(ctx).
		Preload("Character").
		Where("game_id = ?", gameID).
		Order("character_id").
		Find(&links).Error
	return links, err
}

func (s *Store) GameMaps(ctx context.Context, gameID int64) ([]Map, error) {
	maps := make([]Map, 0)
	err := s.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("map_id").Find(&maps).Error
	return maps, err
}

func (s *Store) GameMobs(ctx context.Context, gameID int64) ([]Mob, error) {
	mobs := make([]Mob, 0)
	err := s.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("mob_id").Find(&mobs).Error
	return mobs, err
}

func (s *Store) GameStoryArcs(ctx context.Context, gameID int64) ([]StoryArc, error) {
	arcs := make([]StoryArc, 0)
	err := s.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("arc_order, arc_id").Find(&arcs).Error
	return arcs, err
}

func (s *Store) GameContributors(ctx context.Context, gameID int64) ([]GameContributor, error) {
	links := make([]GameContributor, 0)
	err := s.conn.WithContext(ctx).
		Preload("Contributor").
		Preload("Role").
		Where("game_id = ?", gameID).
		Order("contributor_id, role_id").
		Find(&links).Error
	return links, err
}

func (s *Store) LinkCharacter(ctx context.Context, link *GameCharacter) error {
	return s.conn.WithContext(ctx).Create(link).Error
}

// UnlinkCharacter reports how many join rows were removed.
func (s *Store) UnlinkCharacter(ctx context.Context, gameID, characterID int64) (int64, error) {
	result := s.conn.WithContext(ctx).
		Where("game_id = ? AND character_id = ?", gameID, characterID).
		Delete(&GameCharacter{})
	return result.RowsAffected, result.Error
}

func (s *Store) LinkContributor(ctx context.Context, link *GameContributor) error {
	return s.conn.WithContext(ctx).Create(link).Error
}
