package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Query narrows a List call. Where keys are column names.
type Query struct {
	Where  map[string]any
	Order  string
	Limit  int
	Offset int
}

// Table is keyed CRUD over one model type with an integer primary key.
type Table[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q Query) ([]T, error)
	Insert(ctx context.Context, row *T) error
	Patch(ctx context.Context, id int64, columns map[string]any) (*T, error)
	Delete(ctx context.Context, id int64) (*T, error)
}

type gormTable[T any] struct {
	conn *gorm.DB
}

// NewTable returns a Table backed by conn.
func NewTable[T any](conn *gorm.DB) Table[T] {
	return gormTable[T]{conn: conn}
}

func (t gormTable[T]) Get(ctx context.Context, id int64) (*T, error) {
	var row T
	if err := t.conn.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (t gormTable[T]) List(ctx context.Context, q Query) ([]T, error) {
	tx := t.conn.WithContext(ctx).Model(new(T))
	if len(q.Where) > 0 {
		tx = tx.Where(q.Where)
	}
	if q.Order != "" {
		tx = tx.Order(q.Order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t gormTable[T]) Insert(ctx context.Context, row *T) error {
	return t.conn.WithContext(ctx).Create(row).Error
}

// Patch updates the given columns and returns the row as stored afterwards.
// gorm.ErrRecordNotFound is returned when id matches nothing.
func (t gormTable[T]) Patch(ctx context.Context, id int64, columns map[string]any) (*T, error) {
	var updated T
	err := t.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&current).Updates(columns).Error; err != nil {
			return err
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the row and returns it. A missing row yields (nil, nil).
func (t gormTable[T]) Delete(ctx context.Context, id int64) (*T, error) {
	var deleted *T
	err := t.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row T
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		deleted = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
