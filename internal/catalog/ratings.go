package catalog

import (
	"context"
	"time"

	"crimson-db/internal/db"
)

// RatingInput carries no author. Ratings are always written as the
// signed-in principal.
type RatingInput struct {
	Rating          *float64   `json:"rating" binding:"required"`
	Review          string     `json:"review"`
	ReviewTimestamp *time.Time `json:"reviewTimestamp"`
	PersonalBest    string     `json:"personalBest"`
	GameID          int64      `json:"gameID" binding:"gt=0"`
}

const ratingRequiredMessage = "Rating value and game ID are required"

var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *Service) ListRatings(ctx context.Context, opts ListOptions) ([]Rating, error) {
	return listRows(ctx, s, s.store.Ratings(), opts.query("rating_id"), "Rating", toRating)
}

func (s *Service) GetRating(ctx context.Context, id int64) (*Rating, error) {
	return getRow(ctx, s, s.store.Ratings(), id, "Rating", toRating)
}

// CreateRating records the principal's rating of a game. A second rating of
// the same game by the same user is a Conflict.
func (s *Service) CreateRating(ctx context.Context, p Principal, in RatingInput) (*Rating, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if in.Rating == nil || in.GameID <= 0 {
		return nil, newError(MissingRequiredField, ratingRequiredMessage)
	}
	reviewed := now()
	if in.ReviewTimestamp != nil && !in.ReviewTimestamp.IsZero() {
		reviewed = in.ReviewTimestamp.UTC()
	}
	row := db.Rating{
		UserID:          p.UserID,
		GameID:          in.GameID,
		Score:           *in.Rating,
		Review:          in.Review,
		ReviewTimestamp: reviewed,
		PersonalBest:    in.PersonalBest,
	}
	rating, err := insertRow(ctx, s, s.store.Ratings(), &row, "Rating", toRating)
	if err != nil && KindOf(err) == Conflict {
		return nil, &Error{Kind: Conflict, Message: "You have already rated this game", Err: err}
	}
	return rating, err
}

func (s *Service) UpdateRating(ctx context.Context, p Principal, id int64, patch map[string]any) (*Rating, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if _, err := ratingFields.translate(patch); err != nil {
		return nil, err
	}
	if err := s.checkRatingOwner(ctx, p, id, true); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Ratings(), ratingFields, id, patch, "Rating", toRating)
}

func (s *Service) DeleteRating(ctx context.Context, p Principal, id int64) (DeleteResult[Rating], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Rating]{}, err
	}
	if err := s.checkRatingOwner(ctx, p, id, false); err != nil {
		return DeleteResult[Rating]{}, err
	}
	return deleteRow(ctx, s, s.store.Ratings(), id, "Rating", toRating)
}

// checkRatingOwner rejects writes to another user's rating. A missing row
// is reported as NotFound only when mustExist is set.
func (s *Service) checkRatingOwner(ctx context.Context, p Principal, id int64, mustExist bool) error {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := s.store.Ratings().Get(ctx, id)
	if err != nil {
		if db.IsNotFound(err) && !mustExist {
			return nil
		}
		return classify(err, "Rating")
	}
	if row.UserID != p.UserID {
		return newError(Forbidden, "You can only change your own ratings")
	}
	return nil
}
