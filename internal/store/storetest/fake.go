// Package storetest provides a func-field fake collection for service tests.
package storetest

import (
	"context"

	"github.com/google/uuid"

	"github.com/terangalabs/kadoo-backend/internal/store"
	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
)

// Fake implements store.Collection with overridable behavior per method. A nil
// func falls back to an empty result; FindByID without an override reports not
// found.
type Fake[T any] struct {
	FindManyFn func(ctx context.Context, filters store.Filters, opts store.QueryOptions) ([]T, error)
	FindByIDFn func(ctx context.Context, id uuid.UUID) (*T, error)
	CreateFn   func(ctx context.Context, record *T) error
	UpdateFn   func(ctx context.Context, record *T) error
	DeleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (f *Fake[T]) FindMany(ctx context.Context, filters store.Filters, opts store.QueryOptions) ([]T, error) {
	if f.FindManyFn != nil {
		return f.FindManyFn(ctx, filters, opts)
	}
	return nil, nil
}

func (f *Fake[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	if f.FindByIDFn != nil {
		return f.FindByIDFn(ctx, id)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
}

func (f *Fake[T]) Create(ctx context.Context, record *T) error {
	if f.CreateFn != nil {
		return f.CreateFn(ctx, record)
	}
	return nil
}

func (f *Fake[T]) Update(ctx context.Context, record *T) error {
	if f.UpdateFn != nil {
		return f.UpdateFn(ctx, record)
	}
	return nil
}

func (f *Fake[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if f.DeleteFn != nil {
		return f.DeleteFn(ctx, id)
	}
	return nil
}
