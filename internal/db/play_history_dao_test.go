package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/database"

	"github.com/xxxsen/retrolib/internal/model"
)

func newTestDao(t *testing.T) *playHistoryDao {
	t.Helper()
	hdb, err := Open(context.Background(), filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { hdb.Close() })
	dao := newPlayHistoryDao(func() database.IDatabase { return hdb })
	clock := time.Unix(1700000000, 0)
	dao.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return dao
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	dao := newTestDao(t)

	first, err := dao.Record(ctx, model.PlayRecord{Path: "/roms/snes/a.sfc", System: "snes", Name: "A", PlayCount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.Positive(t, first.ID)
	_, err = dao.Record(ctx, model.PlayRecord{Path: "/roms/snes/b.sfc", System: "snes", Name: "B", PlayCount: 1})
	require.NoError(t, err)
	_, err = dao.Record(ctx, model.PlayRecord{Path: "/roms/snes/a.sfc", System: "snes", Name: "A", PlayCount: 2})
	require.NoError(t, err)

	recent, err := dao.Recent(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "A", recent[0].Name)
	assert.Equal(t, 2, recent[0].PlayCount)
	assert.Equal(t, "B", recent[1].Name)

	onlyA, err := dao.Recent(ctx, "/roms/snes/a.sfc", 0)
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	n, err := dao.DeleteByPath(ctx, "/roms/snes/a.sfc")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	all, err := dao.Recent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDaoWithoutDatabase(t *testing.T) {
	dao := newPlayHistoryDao(func() database.IDatabase { return nil })
	_, err := dao.Record(context.Background(), model.PlayRecord{Path: "x"})
	assert.Error(t, err)
	recs, err := dao.Recent(context.Background(), "", 5)
	assert.NoError(t, err)
	assert.Nil(t, recs)
}
