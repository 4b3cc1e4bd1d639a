package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"crimson-db/internal/db"
	"crimson-db/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type GameInput struct {
	Title              string `json:"title" binding:"notblank"`
	PlotSummary        string `json:"plotSummary"`
	ReleaseDate        string `json:"releaseDate" binding:"notblank"`
	GameCoverURL       string `json:"gameCoverURL"`
	GameLogoURL        string `json:"gameLogoURL"`
	MultiplayerSupport bool   `json:"multiplayerSupport"`
}

const gameRequiredMessage = "Title and release date required"

func (s *Service) ListGames(ctx context.Context, opts ListOptions) ([]Game, error) {
	opts.GameID = 0
	return listRows(ctx, s, s.store.Games(), opts.query("release_date DESC, game_id"), "Game", toGame)
}

// GetGame resolves a game and its five related collections. The related
// lookups run concurrently, each under its own timeout; a failed or timed
// out lookup yields an empty collection and never fails the request.
func (s *Service) GetGame(ctx context.Context, id int64) (*GameDetail, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetGame", trace.WithAttributes(attribute.Int64("game.id", id)))
	defer span.End()

	row, err := s.gameRow(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "game lookup failed")
		return nil, err
	}

	detail := &GameDetail{Game: toGame(*row)}
	var wg sync.WaitGroup
	wg.Go(func() {
		detail.Characters = lookupRelation(ctx, s, id, "characters", s.store.GameCharacters, flattenCharacter)
	})
	wg.Go(func() {
		detail.Maps = lookupRelation(ctx, s, id, "maps", s.store.GameMaps, toMap)
	})
	wg.Go(func() {
		detail.Mobs = lookupRelation(ctx, s, id, "mobs", s.store.GameMobs, toMob)
	})
	wg.Go(func() {
		detail.StoryArcs = lookupRelation(ctx, s, id, "story_arcs", s.store.GameStoryArcs, toStoryArc)
	})
	wg.Go(func() {
		detail.Contributors = lookupRelation(ctx, s, id, "contributors", s.store.GameContributors, flattenContributor)
	})
	wg.Wait()
	return detail, nil
}

// gameRow treats any primary lookup failure as a missing game.
func (s *Service) gameRow(ctx context.Context, id int64) (*db.Game, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := s.store.Games().Get(ctx, id)
	if err != nil {
		if !db.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "game lookup failed", "game_id", id, "error", err)
		}
		return nil, &Error{Kind: NotFound, Message: "Game not found", Err: err}
	}
	return row, nil
}

func lookupRelation[R, T any](
	ctx context.Context,
	s *Service,
	gameID int64,
	relation string,
	fetch func(context.Context, int64) ([]R, error),
	shape func(R) T,
) []T {
	ctx, span := s.tracer.Start(ctx, "catalog.lookup."+relation)
	defer span.End()
	ctx, cancel := s.upstream(ctx)
	defer cancel()

	type result struct {
		rows []R
		err  error
	}
	done := make(chan result, 1)
	go func() {
		rows, err := fetch(ctx, gameID)
		done <- result{rows: rows, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		outcome := "error"
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		telemetry.RelationLookups.WithLabelValues(relation, outcome).Inc()
		span.RecordError(res.err)
		span.SetStatus(codes.Error, outcome)
		s.logger.WarnContext(ctx, "relation lookup degraded",
			"game_id", gameID,
			"relation", relation,
			"outcome", outcome,
			"error", res.err,
		)
		return make([]T, 0)
	}
	telemetry.RelationLookups.WithLabelValues(relation, "ok").Inc()
	span.SetAttributes(attribute.Int("rows", len(res.rows)))
	return mapRows(res.rows, shape)
}

func (s *Service) CreateGame(ctx context.Context, p Principal, in GameInput) (*Game, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ReleaseDate) == "" {
		return nil, newError(MissingRequiredField, gameRequiredMessage)
	}
	released, err := parseDate(strings.TrimSpace(in.ReleaseDate))
	if err != nil {
		return nil, newError(MissingRequiredField, "Field \"releaseDate\" must be "+dateValue.describe())
	}
	row := db.Game{
		Title:              strings.TrimSpace(in.Title),
		PlotSummary:        in.PlotSummary,
		ReleaseDate:        released,
		GameCoverURL:       in.GameCoverURL,
		GameLogoURL:        in.GameLogoURL,
		MultiplayerSupport: in.MultiplayerSupport,
	}
	return insertRow(ctx, s, s.store.Games(), &row, "Game", toGame)
}

func (s *Service) UpdateGame(ctx context.Context, p Principal, id int64, patch map[string]any) (*Game, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Games(), gameFields, id, patch, "Game", toGame)
}

func (s *Service) DeleteGame(ctx context.Context, p Principal, id int64) (DeleteResult[Game], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Game]{}, err
	}
	return deleteRow(ctx, s, s.store.Games(), id, "Game", toGame)
}
