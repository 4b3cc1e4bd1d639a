package db

import (
	"time"

	"gorm.io/datatypes"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&Game{},
		&Character{},
		&GameCharacter{},
		&Contributor{},
		&Role{},
		&GameContributor{},
		&Map{},
		&Mob{},
		&StoryArc{},
		&Clip{},
		&User{},
		&Rating{},
		&Identity{},
		&Session{},
		&PasswordReset{},
	}
}

type Game struct {
	GameID             int64          `gorm:"column:game_id;primaryKey"`
	Title              string         `gorm:"column:title;size:200;not null"`
	PlotSummary        string         `gorm:"column:plot_summary;type:text"`
	ReleaseDate        datatypes.Date `gorm:"column:release_date;not null"`
	GameCoverURL       string         `gorm:"column:game_cover_url;size:500"`
	GameLogoURL        string         `gorm:"column:game_logo_url;size:500"`
	MultiplayerSupport bool           `gorm:"column:multiplayer_support;not null;default:false"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

type Character struct {
	CharacterID   int64     `gorm:"column:character_id;primaryKey"`
	CharacterName string    `gorm:"column:character_name;size:120;not null"`
	Backstory     string    `gorm:"column:backstory;type:text"`
	Description   string    `gorm:"column:description;type:text"`
	EnglishVA     string    `gorm:"column:english_va;size:120"`
	JapaneseVA    string    `gorm:"column:japanese_va;size:120"`
	MotionCapture string    `gorm:"column:motion_capture;size:120"`
	SpriteURL     string    `gorm:"column:sprite_url;size:500"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// GameCharacter is the join row between games and characters.
type GameCharacter struct {
	GameID      int64      `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	CharacterID int64      `gorm:"column:character_id;primaryKey;autoIncrement:false;index"`
	Game        *Game      `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	Character   *Character `gorm:"foreignKey:CharacterID;references:CharacterID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time  `gorm:"not null"`
}

type Contributor struct {
	ContributorID   int64     `gorm:"column:contributor_id;primaryKey"`
	ContributorName string    `gorm:"column:contributor_name;size:120;not null"`
	Specialization  string    `gorm:"column:specialization;size:120"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type Role struct {
	RoleID   int64  `gorm:"column:role_id;primaryKey"`
	RoleName string `gorm:"column:role_name;size:64;not null;uniqueIndex"`
}

// GameContributor is the join row between games, contributors and their role.
type GameContributor struct {
	GameID        int64        `gorm:"column:game_id;primaryKey;autoIncrement:false"`
	ContributorID int64        `gorm:"column:contributor_id;primaryKey;autoIncrement:false;index"`
	RoleID        int64        `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	Game          *Game        `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	Contributor   *Contributor `gorm:"foreignKey:ContributorID;references:ContributorID;constraint:OnDelete:CASCADE"`
	Role          *Role        `gorm:"foreignKey:RoleID;references:RoleID"`
	CreatedAt     time.Time    `gorm:"not null"`
}

type Map struct {
	MapID       int64     `gorm:"column:map_id;primaryKey"`
	GameID      int64     `gorm:"column:game_id;index;not null"`
	MapName     string    `gorm:"column:map_name;size:120;not null"`
	FloorName   string    `gorm:"column:floor_name;size:120"`
	Description string    `gorm:"column:description;type:text"`
	MapURL      string    `gorm:"column:map_url;size:500"`
	Game        *Game     `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Mob struct {
	MobID        int64     `gorm:"column:mob_id;primaryKey"`
	GameID       int64     `gorm:"column:game_id;index;not null"`
	MobName      string    `gorm:"column:mob_name;size:120;not null"`
	MobType      string    `gorm:"column:mob_type;size:64"`
	Description  string    `gorm:"column:description;type:text"`
	Weakness     string    `gorm:"column:weakness;size:120"`
	MobSpriteURL string    `gorm:"column:mob_sprite_url;size:500"`
	SpawnNotes   string    `gorm:"column:spawn_notes;type:text"`
	Game         *Game     `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// StoryArc rows form a tree through ParentArcID. Removing a parent detaches
// its children.
type StoryArc struct {
	ArcID       int64     `gorm:"column:arc_id;primaryKey"`
	GameID      int64     `gorm:"column:game_id;index;not null"`
	ArcTitle    string    `gorm:"column:arc_title;size:200;not null"`
	ArcOrder    float64   `gorm:"column:arc_order;not null;default:0"`
	Summary     string    `gorm:"column:summary;type:text"`
	Description string    `gorm:"column:description;type:text"`
	IsMainArc   bool      `gorm:"column:is_main_arc;not null;default:false"`
	ParentArcID *int64    `gorm:"column:parent_arc_id;index"`
	Game        *Game     `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	Parent      *StoryArc `gorm:"foreignKey:ParentArcID;references:ArcID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Clip struct {
	ClipID    int64     `gorm:"column:clip_id;primaryKey"`
	GameID    *int64    `gorm:"column:game_id;index"`
	ClipTitle string    `gorm:"column:clip_title;size:200;not null"`
	ClipURL   string    `gorm:"column:clip_url;size:500"`
	MediaType string    `gorm:"column:media_type;size:32"`
	Game      *Game     `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Rating is unique per (user, game).
type Rating struct {
	RatingID        int64     `gorm:"column:rating_id;primaryKey"`
	UserID          string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_ratings_user_game"`
	GameID          int64     `gorm:"column:game_id;not null;uniqueIndex:idx_ratings_user_game;index"`
	Score           float64   `gorm:"column:rating;not null"`
	Review          string    `gorm:"column:review;type:text"`
	ReviewTimestamp time.Time `gorm:"column:review_timestamp;not null"`
	PersonalBest    string    `gorm:"column:personal_best;size:64"`
	Game            *Game     `gorm:"foreignKey:GameID;references:GameID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// User is the public profile paired 1:1 with an Identity.
type User struct {
	UserID              string    `gorm:"column:user_id;primaryKey;size:36"`
	Username            string    `gorm:"column:username;size:64;not null"`
	Email               string    `gorm:"column:email;size:254;not null"`
	PfpURL              string    `gorm:"column:pfp_url;size:500"`
	IsDev               bool      `gorm:"column:is_dev;not null;default:false"`
	AccountCreationDate time.Time `gorm:"column:account_creation_date;not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}
