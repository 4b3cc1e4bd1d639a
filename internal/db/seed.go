package db

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LoadGames reads games from a CSV and inserts the ones whose title is not
// already present. Columns: title, release_date, plot_summary,
// game_cover_url, game_logo_url, multiplayer_support. The first row is a header.
func LoadGames(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := readGames(file)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		var existing int64
		if err := conn.Model(&Game{}).Where("title = ?", record.Title).Count(&existing).Error; err != nil {
			return inserted, err
		}
		if existing > 0 {
			continue
		}
		if err := conn.Create(&record).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readGames(r io.Reader) ([]Game, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var games []Game
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		title := strings.TrimSpace(row[0])
		if title == "" {
			continue
		}
		released, err := time.Parse(time.DateOnly, strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: release date: %w", i+1, err)
		}
		game := Game{
			Title:       title,
			ReleaseDate: datatypes.Date(released),
		}
		if len(row) > 2 {
			game.PlotSummary = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			game.GameCoverURL = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			game.GameLogoURL = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			if multi, err := strconv.ParseBool(strings.TrimSpace(row[5])); err == nil {
				game.MultiplayerSupport = multi
			}
		}
		games = append(games, game)
	}
	return games, nil
}

// DefaultRoles are the contributor roles created by EnsureRoles when none are given.
var DefaultRoles = []string{"Director", "Producer", "Writer", "Composer", "Artist", "Programmer", "Voice Director"}

// EnsureRoles inserts any of the named roles that do not exist yet.
func EnsureRoles(conn *gorm.DB, names ...string) error {
	if len(names) == 0 {
		names = DefaultRoles
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		role := Role{RoleName: name}
		if err := conn.Where(Role{RoleName: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("ensure role %q: %w", name, err)
		}
	}
	return nil
}
