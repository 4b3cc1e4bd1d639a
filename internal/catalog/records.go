package catalog

import (
	"time"

	"crimson-db/internal/db"
)

const dateLayout = "2006-01-02"

type Game struct {
	GameID             int64  `json:"gameID"`
	Title              string `json:"title"`
	PlotSummary        string `json:"plotSummary"`
	ReleaseDate        string `json:"releaseDate"`
	GameCoverURL       string `json:"gameCoverURL"`
	GameLogoURL        string `json:"gameLogoURL"`
	MultiplayerSupport bool   `json:"multiplayerSupport"`
}

// GameDetail is a game with its related collections. Every collection is
// non-nil so it encodes as [] when empty.
type GameDetail struct {
	Game
	Characters   []CharacterSummary   `json:"characters"`
	Maps         []Map                `json:"maps"`
	Mobs         []Mob                `json:"mobs"`
	StoryArcs    []StoryArc           `json:"storyArcs"`
	Contributors []ContributorSummary `json:"contributors"`
}

type Character struct {
	CharacterID   int64  `json:"characterID"`
	CharacterName string `json:"characterName"`
	Backstory     string `json:"backstory"`
	Description   string `json:"description"`
	EnglishVA     string `json:"englishVA"`
	JapaneseVA    string `json:"japaneseVA"`
	MotionCapture string `json:"motionCapture"`
	SpriteURL     string `json:"spriteURL"`
}

// CharacterSummary is a character as it appears inside a game detail.
type CharacterSummary struct {
	CharacterID   int64  `json:"characterID"`
	CharacterName string `json:"characterName"`
	Backstory     string `json:"backstory"`
	EnglishVA     string `json:"englishVA"`
	JapaneseVA    string `json:"japaneseVA"`
	MotionCapture string `json:"motionCapture"`
	SpriteURL     string `json:"spriteURL"`
}

type Map struct {
	MapID       int64  `json:"mapID"`
	MapName     string `json:"mapName"`
	FloorName   string `json:"floorName"`
	Description string `json:"description"`
	MapURL      string `json:"mapURL"`
	GameID      int64  `json:"gameID"`
}

type Mob struct {
	MobID        int64  `json:"mobID"`
	MobName      string `json:"mobName"`
	MobType      string `json:"mobType"`
	Description  string `json:"description"`
	Weakness     string `json:"weakness"`
	MobSpriteURL string `json:"mobSpriteURL"`
	SpawnNotes   string `json:"spawnNotes"`
	GameID       int64  `json:"gameID"`
}

type StoryArc struct {
	ArcID       int64   `json:"arcID"`
	ArcTitle    string  `json:"arcTitle"`
	ArcOrder    float64 `json:"arcOrder"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	IsMainArc   bool    `json:"isMainArc"`
	ParentArcID *int64  `json:"parentArcID"`
	GameID      int64   `json:"gameID"`
}

type Rating struct {
	RatingID        int64     `json:"ratingID"`
	Rating          float64   `json:"rating"`
	Review          string    `json:"review"`
	ReviewTimestamp time.Time `json:"reviewTimestamp"`
	PersonalBest    string    `json:"personalBest"`
	GameID          int64     `json:"gameID"`
	UserID          string    `json:"userID"`
}

type Clip struct {
	ClipID    int64  `json:"clipID"`
	ClipTitle string `json:"clipTitle"`
	ClipURL   string `json:"clipURL"`
	MediaType string `json:"mediaType"`
	GameID    *int64 `json:"gameID"`
}

type Contributor struct {
	ContributorID   int64  `json:"contributorID"`
	ContributorName string `json:"contributorName"`
	Specialization  string `json:"specialization"`
}

// ContributorSummary is a contributor credited on a game in a given role.
type ContributorSummary struct {
	ContributorID   int64  `json:"contributorID"`
	ContributorName string `json:"contributorName"`
	Specialization  string `json:"specialization"`
	RoleID          int64  `json:"roleID"`
	RoleName        string `json:"roleName"`
}

type Role struct {
	RoleID   int64  `json:"roleID"`
	RoleName string `json:"roleName"`
}

type CharacterLink struct {
	GameID      int64 `json:"gameID"`
	CharacterID int64 `json:"characterID"`
}

type ContributorLink struct {
	GameID        int64 `json:"gameID"`
	ContributorID int64 `json:"contributorID"`
	RoleID        int64 `json:"roleID"`
}

// DeleteResult reports a delete. A missing row is Success with a nil
// Deleted and a zero Count.
type DeleteResult[T any] struct {
	Success bool `json:"success"`
	Deleted *T   `json:"deleted"`
	Count   int  `json:"count"`
}

type UnlinkResult struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func toGame(row db.Game) Game {
	return Game{
		GameID:             row.GameID,
		Title:              row.Title,
		PlotSummary:        row.PlotSummary,
		ReleaseDate:        formatDate(time.Time(row.ReleaseDate)),
		GameCoverURL:       row.GameCoverURL,
		GameLogoURL:        row.GameLogoURL,
		MultiplayerSupport: row.MultiplayerSupport,
	}
}

func toCharacter(row db.Character) Character {
	return Character{
		CharacterID:   row.CharacterID,
		CharacterName: row.CharacterName,
		Backstory:     row.Backstory,
		Description:   row.Description,
		EnglishVA:     row.EnglishVA,
		JapaneseVA:    row.JapaneseVA,
		MotionCapture: row.MotionCapture,
		SpriteURL:     row.SpriteURL,
	}
}

func toMap(row db.Map) Map {
	return Map{
		MapID:       row.MapID,
		MapName:     row.MapName,
		FloorName:   row.FloorName,
		Description: row.Description,
		MapURL:      row.MapURL,
		GameID:      row.GameID,
	}
}

func toMob(row db.Mob) Mob {
	return Mob{
		MobID:        row.MobID,
		MobName:      row.MobName,
		MobType:      row.MobType,
		Description:  row.Description,
		Weakness:     row.Weakness,
		MobSpriteURL: row.MobSpriteURL,
		SpawnNotes:   row.SpawnNotes,
		GameID:       row.GameID,
	}
}

func toStoryArc(row db.StoryArc) StoryArc {
	return StoryArc{
		ArcID:       row.ArcID,
		ArcTitle:    row.ArcTitle,
		ArcOrder:    row.ArcOrder,
		Summary:     row.Summary,
		Description: row.Description,
		IsMainArc:   row.IsMainArc,
		ParentArcID: row.ParentArcID,
		GameID:      row.GameID,
	}
}

func toRating(row db.Rating) Rating {
	return Rating{
		RatingID:        row.RatingID,
		Rating:          row.Score,
		Review:          row.Review,
		ReviewTimestamp: row.ReviewTimestamp.UTC(),
		PersonalBest:    row.PersonalBest,
		GameID:          row.GameID,
		UserID:          row.UserID,
	}
}

func toClip(row db.Clip) Clip {
	return Clip{
		ClipID:    row.ClipID,
		ClipTitle: row.ClipTitle,
		ClipURL:   row.ClipURL,
		MediaType: row.MediaType,
		GameID:    row.GameID,
	}
}

func toContributor(row db.Contributor) Contributor {
	return Contributor{
		ContributorID:   row.ContributorID,
		ContributorName: row.ContributorName,
		Specialization:  row.Specialization,
	}
}

func toRole(row db.Role) Role {
	return Role{RoleID: row.RoleID, RoleName: row.RoleName}
}

func mapRows[R, T any](rows []R, fn func(R) T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}
