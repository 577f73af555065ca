package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordSuccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	s.RecordSuccess(ctx, "mojeek", 12, 340*time.Millisecond)
	s.RecordSuccess(ctx, "mojeek", 8, 120*time.Millisecond)

	var rows []Success
	require.NoError(t, s.db.NewSelect().Model(&rows).Order("id").Scan(ctx))
	require.Len(t, rows, 2)
	assert.Equal(t, "mojeek", rows[0].Engine)
	assert.Equal(t, 12, rows[0].ResultCount)
	assert.InDelta(t, 0.34, rows[0].Time, 1e-9)
}

func TestRecordErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	s.RecordErrors(ctx, map[string]error{
		"alexandria": errors.New("500 Internal Server Error"),
	})
	s.RecordErrors(ctx, nil)

	var rows []Error
	require.NoError(t, s.db.NewSelect().Model(&rows).Scan(ctx))
	require.Len(t, rows, 1)
	assert.Equal(t, "alexandria", rows[0].Engine)
	assert.Equal(t, "500 Internal Server Error", rows[0].Error)
}

func TestOpen_CreatesTablesIdempotently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s1, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2 := openTestStore(t)
	s2.RecordSuccess(ctx, "sese", 1, time.Millisecond)
}
