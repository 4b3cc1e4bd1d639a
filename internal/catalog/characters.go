package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type CharacterInput struct {
	CharacterName string `json:"characterName" binding:"notblank"`
	Backstory     string `json:"backstory"`
	Description   string `json:"description"`
	EnglishVA     string `json:"englishVA"`
	JapaneseVA    string `json:"japaneseVA"`
	MotionCapture string `json:"motionCapture"`
	SpriteURL     string `json:"spriteURL"`
}

func (s *Service) ListCharacters(ctx context.Context, opts ListOptions) ([]Character, error) {
	opts.GameID = 0
	return listRows(ctx, s, s.store.Characters(), opts.query("character_id"), "Character", toCharacter)
}

func (s *Service) GetCharacter(ctx context.Context, id int64) (*Character, error) {
	return getRow(ctx, s, s.store.Characters(), id, "Character", toCharacter)
}

func (s *Service) CreateCharacter(ctx context.Context, p Principal, in CharacterInput) (*Character, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := requireText(in.CharacterName, "Character name required"); err != nil {
		return nil, err
	}
	row := db.Character{
		CharacterName: strings.TrimSpace(in.CharacterName),
		Backstory:     in.Backstory,
		Description:   in.Description,
		EnglishVA:     in.EnglishVA,
		JapaneseVA:    in.JapaneseVA,
		MotionCapture: in.MotionCapture,
		SpriteURL:     in.SpriteURL,
	}
	return insertRow(ctx, s, s.store.Characters(), &row, "Character", toCharacter)
}

func (s *Service) UpdateCharacter(ctx context.Context, p Principal, id int64, patch map[string]any) (*Character, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Characters(), characterFields, id, patch, "Character", toCharacter)
}

func (s *Service) DeleteCharacter(ctx context.Context, p Principal, id int64) (DeleteResult[Character], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Character]{}, err
	}
	return deleteRow(ctx, s, s.store.Characters(), id, "Character", toCharacter)
}

// LinkCharacter credits an existing character in an existing game.
func (s *Service) LinkCharacter(ctx context.Context, p Principal, gameID, characterID int64) (*CharacterLink, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if characterID <= 0 {
		return nil, newError(InvalidIdentifier, "Invalid character ID")
	}
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	if _, err := s.store.Games().Get(ctx, gameID); err != nil {
		return nil, classify(err, "Game")
	}
	if _, err := s.store.Characters().Get(ctx, characterID); err != nil {
		return nil, classify(err, "Character")
	}
	link := db.GameCharacter{GameID: gameID, CharacterID: characterID}
	if err := s.store.LinkCharacter(ctx, &link); err != nil {
		return nil, classify(err, "Character link")
	}
	return &CharacterLink{GameID: gameID, CharacterID: characterID}, nil
}

// UnlinkCharacter removes a game credit. Removing a link that does not
// exist succeeds with a zero count.
func (s *Service) UnlinkCharacter(ctx context.Context, p Principal, gameID, characterID int64) (UnlinkResult, error) {
	if err := requirePrincipal(p); err != nil {
		return UnlinkResult{}, err
	}
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	count, err := s.store.UnlinkCharacter(ctx, gameID, characterID)
	if err != nil {
		return UnlinkResult{}, classify(err, "Character link")
	}
	return UnlinkResult{Success: true, Count: count}, nil
}
