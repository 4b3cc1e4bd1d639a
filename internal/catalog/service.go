// Package catalog reads and writes the game catalogue: games and the
// characters, maps, mobs, story arcs, ratings, clips and contributors that
// hang off them. It validates input before touching the store, shapes rows
// into the public camelCase records, and classifies store failures into
// error kinds the HTTP layer maps to status codes.
package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"crimson-db/internal/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultUpstreamTimeout = 5 * time.Second
	maxPerPage             = 200
)

// Store is the persistence surface the catalog needs. *db.Store satisfies it.
type Store interface {
	Games() db.Table[db.Game]
	Characters() db.Table[db.Character]
	Maps() db.Table[db.Map]
	Mobs() db.Table[db.Mob]
	StoryArcs() db.Table[db.StoryArc]
	Ratings() db.Table[db.Rating]
	Clips() db.Table[db.Clip]
	Contributors() db.Table[db.Contributor]
	Roles() db.Table[db.Role]

	GameCharacters(ctx context.Context, gameID int64) ([]db.GameCharacter, error)
	GameMaps(ctx context.Context, gameID int64) ([]db.Map, error)
	GameMobs(ctx context.Context, gameID int64) ([]db.Mob, error)
	GameStoryArcs(ctx context.Context, gameID int64) ([]db.StoryArc, error)
	GameContributors(ctx context.Context, gameID int64) ([]db.GameContributor, error)

	LinkCharacter(ctx context.Context, link *db.GameCharacter) error
	UnlinkCharacter(ctx context.Context, gameID, characterID int64) (int64, error)
	LinkContributor(ctx context.Context, link *db.GameContributor) error
}

// Principal is the signed-in user a mutation acts for.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) IsZero() bool {
	return strings.TrimSpace(p.UserID) == ""
}

// ListOptions narrows a list call. Zero values mean no filter and no paging.
type ListOptions struct {
	GameID  int64
	Page    int
	PerPage int
}

type Service struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New builds a Service. timeout bounds each individual store call; a
// non-positive value falls back to five seconds.
func New(store Store, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		timeout: timeout,
		logger:  logger,
		tracer:  otel.Tracer("crimson-db/internal/catalog"),
	}
}

// ParseID parses a path identifier. label names the entity in the error,
// e.g. "game" gives "Invalid game ID".
func ParseID(raw, label string) (int64, error) {
	invalid := newError(InvalidIdentifier, "Invalid "+label+" ID")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func requirePrincipal(p Principal) error {
	if p.IsZero() {
		return newError(Unauthorized, "Unauthorized")
	}
	return nil
}

func (s *Service) upstream(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (opts ListOptions) query(order string) db.Query {
	q := db.Query{Order: order}
	if opts.GameID > 0 {
		q.Where = map[string]any{"game_id": opts.GameID}
	}
	if opts.PerPage > 0 {
		perPage := min(opts.PerPage, maxPerPage)
		page := max(opts.Page, 1)
		q.Limit = perPage
		q.Offset = (page - 1) * perPage
	}
	return q
}

func requireText(value, message string) error {
	if strings.TrimSpace(value) == "" {
		return newError(MissingRequiredField, message)
	}
	return nil
}

func deleted[R, T any](row *R, fn func(R) T) DeleteResult[T] {
	if row == nil {
		return DeleteResult[T]{Success: true}
	}
	out := fn(*row)
	return DeleteResult[T]{Success: true, Deleted: &out, Count: 1}
}
