package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type StoryArcInput struct {
	ArcTitle    string  `json:"arcTitle" binding:"notblank"`
	ArcOrder    float64 `json:"arcOrder"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	IsMainArc   bool    `json:"isMainArc"`
	ParentArcID *int64  `json:"parentArcID"`
	GameID      int64   `json:"gameID" binding:"gt=0"`
}

const storyArcRequiredMessage = "Arc title and game ID required"

func (s *Service) ListStoryArcs(ctx context.Context, opts ListOptions) ([]StoryArc, error) {
	return listRows(ctx, s, s.store.StoryArcs(), opts.query("game_id, arc_order, arc_id"), "Story arc", toStoryArc)
}

func (s *Service) GetStoryArc(ctx context.Context, id int64) (*StoryArc, error) {
	return getRow(ctx, s, s.store.StoryArcs(), id, "Story arc", toStoryArc)
}

// CreateStoryArc inserts an arc. A parent arc, when given, must already
// exist and belong to the same game.
func (s *Service) CreateStoryArc(ctx context.Context, p Principal, in StoryArcInput) (*StoryArc, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ArcTitle) == "" || in.GameID <= 0 {
		return nil, newError(MissingRequiredField, storyArcRequiredMessage)
	}
	if in.ParentArcID != nil {
		if err := s.checkParentArc(ctx, in.GameID, *in.ParentArcID); err != nil {
			return nil, err
		}
	}
	row := db.StoryArc{
		GameID:      in.GameID,
		ArcTitle:    strings.TrimSpace(in.ArcTitle),
		ArcOrder:    in.ArcOrder,
		Summary:     in.Summary,
		Description: in.Description,
		IsMainArc:   in.IsMainArc,
		ParentArcID: in.ParentArcID,
	}
	return insertRow(ctx, s, s.store.StoryArcs(), &row, "Story arc", toStoryArc)
}

// UpdateStoryArc applies patch to an arc. A changed parent or game is
// checked the same way CreateStoryArc checks it, and the parent chain may
// not loop back to the arc itself.
func (s *Service) UpdateStoryArc(ctx context.Context, p Principal, id int64, patch map[string]any) (*StoryArc, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	_, parentSet := patch["parentArcID"]
	_, gameSet := patch["gameID"]
	if parentSet || gameSet {
		if err := s.checkArcPlacement(ctx, id, patch); err != nil {
			return nil, err
		}
	}
	return patchRow(ctx, s, s.store.StoryArcs(), storyArcFields, id, patch, "Story arc", toStoryArc)
}

func (s *Service) DeleteStoryArc(ctx context.Context, p Principal, id int64) (DeleteResult[StoryArc], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[StoryArc]{}, err
	}
	return deleteRow(ctx, s, s.store.StoryArcs(), id, "Story arc", toStoryArc)
}

func (s *Service) checkParentArc(ctx context.Context, gameID, parentID int64) error {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	parent, err := s.store.StoryArcs().Get(ctx, parentID)
	if err != nil {
		if db.IsNotFound(err) {
			return newError(InvalidReference, "Parent story arc not found")
		}
		return classify(err, "Story arc")
	}
	if parent.GameID != gameID {
		return newError(InvalidReference, "Parent story arc belongs to another game")
	}
	return nil
}

// checkArcPlacement validates the game and parent an arc would have after
// patch is applied. Values that fail to parse are left to the field
// translation to reject.
func (s *Service) checkArcPlacement(ctx context.Context, id int64, patch map[string]any) error {
	current, err := s.arcRow(ctx, id)
	if err != nil {
		return err
	}
	gameID := current.GameID
	if raw, ok := patch["gameID"]; ok {
		if v, ok := asInt(raw); ok {
			gameID = v
		}
	}
	parentID := current.ParentArcID
	if raw, ok := patch["parentArcID"]; ok {
		if raw == nil {
			parentID = nil
		} else if v, ok := asInt(raw); ok {
			parentID = &v
		}
	}

	if gameID != current.GameID {
		children, err := s.arcChildren(ctx, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return newError(InvalidReference, "Story arc has child arcs in its current game")
		}
	}
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return newError(InvalidReference, "A story arc cannot be its own parent")
	}
	if err := s.checkParentArc(ctx, gameID, *parentID); err != nil {
		return err
	}
	return s.checkArcCycle(ctx, id, *parentID)
}

// checkArcCycle walks up from parentID and fails if it reaches id.
func (s *Service) checkArcCycle(ctx context.Context, id, parentID int64) error {
	seen := map[int64]bool{id: true}
	next := &parentID
	for next != nil {
		if seen[*next] {
			return newError(InvalidReference, "Story arc parents cannot form a cycle")
		}
		seen[*next] = true
		arc, err := s.arcRow(ctx, *next)
		if err != nil {
			if KindOf(err) == NotFound {
				return nil
			}
			return err
		}
		next = arc.ParentArcID
	}
	return nil
}

func (s *Service) arcRow(ctx context.Context, id int64) (*db.StoryArc, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := s.store.StoryArcs().Get(ctx, id)
	if err != nil {
		return nil, classify(err, "Story arc")
	}
	return row, nil
}

func (s *Service) arcChildren(ctx context.Context, id int64) ([]db.StoryArc, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	rows, err := s.store.StoryArcs().List(ctx, db.Query{Where: map[string]any{"parent_arc_id": id}, Limit: 1})
	if err != nil {
		return nil, classify(err, "Story arc")
	}
	return rows, nil
}
