package catalog

import (
	"context"
	"strings"

	"crimson-db/internal/db"
)

type ContributorInput struct {
	ContributorName string `json:"contributorName" binding:"notblank"`
	Specialization  string `json:"specialization"`
}

type ContributorLinkInput struct {
	ContributorID int64 `json:"contributorID" binding:"gt=0"`
	RoleID        int64 `json:"roleID" binding:"gt=0"`
}

func (s *Service) ListContributors(ctx context.Context, opts ListOptions) ([]Contributor, error) {
	opts.GameID = 0
	return listRows(ctx, s, s.store.Contributors(), opts.query("contributor_id"), "Contributor", toContributor)
}

func (s *Service) GetContributor(ctx context.Context, id int64) (*Contributor, error) {
	return getRow(ctx, s, s.store.Contributors(), id, "Contributor", toContributor)
}

func (s *Service) CreateContributor(ctx context.Context, p Principal, in ContributorInput) (*Contributor, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := requireText(in.ContributorName, "Contributor name required"); err != nil {
		return nil, err
	}
	row := db.Contributor{
		ContributorName: strings.TrimSpace(in.ContributorName),
		Specialization:  in.Specialization,
	}
	return insertRow(ctx, s, s.store.Contributors(), &row, "Contributor", toContributor)
}

func (s *Service) UpdateContributor(ctx context.Context, p Principal, id int64, patch map[string]any) (*Contributor, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return patchRow(ctx, s, s.store.Contributors(), contributorFields, id, patch, "Contributor", toContributor)
}

func (s *Service) DeleteContributor(ctx context.Context, p Principal, id int64) (DeleteResult[Contributor], error) {
	if err := requirePrincipal(p); err != nil {
		return DeleteResult[Contributor]{}, err
	}
	return deleteRow(ctx, s, s.store.Contributors(), id, "Contributor", toContributor)
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return listRows(ctx, s, s.store.Roles(), db.Query{Order: "role_name"}, "Role", toRole)
}

// LinkContributor credits a contributor on a game in the given role.
func (s *Service) LinkContributor(ctx context.Context, p Principal, gameID int64, in ContributorLinkInput) (*ContributorLink, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if in.ContributorID <= 0 || in.RoleID <= 0 {
		return nil, newError(MissingRequiredField, "Contributor ID and role ID required")
	}
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	if _, err := s.store.Games().Get(ctx, gameID); err != nil {
		return nil, classify(err, "Game")
	}
	if _, err := s.store.Contributors().Get(ctx, in.ContributorID); err != nil {
		return nil, classify(err, "Contributor")
	}
	if _, err := s.store.Roles().Get(ctx, in.RoleID); err != nil {
		return nil, classify(err, "Role")
	}
	link := db.GameContributor{GameID: gameID, ContributorID: in.ContributorID, RoleID: in.RoleID}
	if err := s.store.LinkContributor(ctx, &link); err != nil {
		return nil, classify(err, "Contributor credit")
	}
	return &ContributorLink{GameID: gameID, ContributorID: in.ContributorID, RoleID: in.RoleID}, nil
}
