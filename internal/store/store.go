// Package store exposes persistence as uniform per-entity collections.
// Every collection has exactly five operations and no transaction helper;
// callers that need multi-entity consistency get it from write ordering and
// existence checks, never from the storage layer.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
)

// Filters selects records by column value. A plain key means equality, a nil
// value means IS NULL, and a key may carry a trailing comparison operator
// ("birthday_date <", "created_at <=") for range scans.
type Filters map[string]any

// QueryOptions shapes a FindMany result set.
type QueryOptions struct {
	Limit   int
	Offset  int
	OrderBy string
}

// Collection is the full persistence surface for one entity type.
type Collection[T any] interface {
	FindMany(ctx context.Context, filters Filters, opts QueryOptions) ([]T, error)
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type collection[T any] struct {
	db *gorm.DB
}

// NewCollection returns a Collection for T backed by the provided database.
func NewCollection[T any](db *gorm.DB) Collection[T] {
	return &collection[T]{db: db}
}

var columnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var allowedOperators = map[string]struct{}{
	"<": {}, "<=": {}, ">": {}, ">=": {}, "!=": {},
}

// applyFilters translates the filter map into WHERE clauses. Column names are
// validated against an identifier pattern and operators against an allowlist,
// so filter keys are never interpolated raw.
func applyFilters(tx *gorm.DB, filters Filters) (*gorm.DB, error) {
	for key, value := range filters {
		column := key
		operator := "="
		if idx := strings.IndexByte(key, ' '); idx >= 0 {
			column = key[:idx]
			operator = strings.TrimSpace(key[idx+1:])
			if _, ok := allowedOperators[operator]; !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported filter operator %q", operator))
			}
		}
		if !columnPattern.MatchString(column) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid filter column %q", column))
		}
		if value == nil {
			if operator == "!=" {
				tx = tx.Where(column + " IS NOT NULL")
			} else {
				tx = tx.Where(column + " IS NULL")
			}
			continue
		}
		tx = tx.Where(fmt.Sprintf("%s %s ?", column, operator), value)
	}
	return tx, nil
}

func (c *collection[T]) FindMany(ctx context.Context, filters Filters, opts QueryOptions) ([]T, error) {
	tx, err := applyFilters(c.db.WithContext(ctx), filters)
	if err != nil {
		return nil, err
	}
	if opts.OrderBy != "" {
		tx = tx.Order(opts.OrderBy)
	}
	if opts.Limit > 0 {
		tx = tx.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		tx = tx.Offset(opts.Offset)
	}
	var records []T
	if err := tx.Find(&records).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "query records")
	}
	return records, nil
}

func (c *collection[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := c.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load record")
	}
	return &record, nil
}

func (c *collection[T]) Create(ctx context.Context, record *T) error {
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "record is required")
	}
	if err := c.db.WithContext(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create record")
	}
	return nil
}

func (c *collection[T]) Update(ctx context.Context, record *T) error {
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "record is required")
	}
	if err := c.db.WithContext(ctx).Save(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update record")
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	var record T
	if err := c.db.WithContext(ctx).Delete(&record, "id = ?", id).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete record")
	}
	return nil
}
