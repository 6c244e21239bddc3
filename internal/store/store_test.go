package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "github.com/terangalabs/kadoo-backend/pkg/errors"
)

type entry struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Kind      string     `gorm:"column:kind;type:text;not null"`
	Amount    int64      `gorm:"column:amount;not null"`
	DueAt     *time.Time `gorm:"column:due_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entry{}))
	return db
}

func seedEntries(t *testing.T, coll Collection[entry]) []entry {
	t.Helper()
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := []entry{
		{ID: uuid.New(), Kind: "donation", Amount: 1000, DueAt: &due},
		{ID: uuid.New(), Kind: "donation", Amount: 5000},
		{ID: uuid.New(), Kind: "bonus", Amount: 250, DueAt: &due},
	}
	for i := range rows {
		require.NoError(t, coll.Create(context.Background(), &rows[i]))
	}
	return rows
}

func TestFindManyEqualityFilter(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	seedEntries(t, coll)

	got, err := coll.FindMany(context.Background(), Filters{"kind": "donation"}, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindManyOperatorSuffix(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	seedEntries(t, coll)

	got, err := coll.FindMany(context.Background(), Filters{"amount >=": int64(1000)}, QueryOptions{OrderBy: "amount ASC"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].Amount)
	assert.Equal(t, int64(5000), got[1].Amount)
}

func TestFindManyNullFilters(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	seedEntries(t, coll)

	missing, err := coll.FindMany(context.Background(), Filters{"due_at": nil}, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, missing, 1)

	present, err := coll.FindMany(context.Background(), Filters{"due_at !=": nil}, QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, present, 2)
}

func TestFindManyLimitOffset(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	seedEntries(t, coll)

	got, err := coll.FindMany(context.Background(), nil, QueryOptions{OrderBy: "amount ASC", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1000), got[0].Amount)
}

func TestFindManyRejectsBadFilters(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))

	_, err := coll.FindMany(context.Background(), Filters{"amount LIKE": "x"}, QueryOptions{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "operator should be rejected: %v", err)

	_, err = coll.FindMany(context.Background(), Filters{"amount; DROP TABLE entries": 1}, QueryOptions{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "column should be rejected: %v", err)
}

func TestFindByID(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	rows := seedEntries(t, coll)

	got, err := coll.FindByID(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, rows[0].Kind, got.Kind)

	_, err = coll.FindByID(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "expected not found, got %v", err)
}

func TestUpdateAndDelete(t *testing.T) {
	coll := NewCollection[entry](openTestDB(t))
	rows := seedEntries(t, coll)

	rows[0].Amount = 9999
	require.NoError(t, coll.Update(context.Background(), &rows[0]))
	got, err := coll.FindByID(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9999), got.Amount)

	require.NoError(t, coll.Delete(context.Background(), rows[1].ID))
	_, err = coll.FindByID(context.Background(), rows[1].ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "expected not found after delete, got %v", err)
}
