package catalog

import (
	"context"

	"crimson-db/internal/db"
)

func listRows[R, T any](ctx context.Context, s *Service, table db.Table[R], q db.Query, entity string, shape func(R) T) ([]T, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	rows, err := table.List(ctx, q)
	if err != nil {
		return nil, classify(err, entity)
	}
	return mapRows(rows, shape), nil
}

func getRow[R, T any](ctx context.Context, s *Service, table db.Table[R], id int64, entity string, shape func(R) T) (*T, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := table.Get(ctx, id)
	if err != nil {
		return nil, classify(err, entity)
	}
	out := shape(*row)
	return &out, nil
}

func insertRow[R, T any](ctx context.Context, s *Service, table db.Table[R], row *R, entity string, shape func(R) T) (*T, error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	if err := table.Insert(ctx, row); err != nil {
		return nil, classify(err, entity)
	}
	out := shape(*row)
	return &out, nil
}

func patchRow[R, T any](ctx context.Context, s *Service, table db.Table[R], fields fieldSet, id int64, patch map[string]any, entity string, shape func(R) T) (*T, error) {
	columns, err := fields.translate(patch)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := table.Patch(ctx, id, columns)
	if err != nil {
		return nil, classify(err, entity)
	}
	out := shape(*row)
	return &out, nil
}

func deleteRow[R, T any](ctx context.Context, s *Service, table db.Table[R], id int64, entity string, shape func(R) T) (DeleteResult[T], error) {
	ctx, cancel := s.upstream(ctx)
	defer cancel()
	row, err := table.Delete(ctx, id)
	if err != nil {
		return DeleteResult[T]{}, classify(err, entity)
	}
	return deleted(row, shape), nil
}
