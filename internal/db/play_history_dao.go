package db

import (
	"context"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"
	"github.com/xxxsen/common/database/dbkit"

	"github.com/xxxsen/retrolib/internal/model"
)

const playHistoryTableName = "play_history_tab"

var PlayHistoryDao = newPlayHistoryDao(Default)

type playHistoryRow struct {
	ID         int64  `db:"id"`
	SessionID  string `db:"session_id"`
	RomPath    string `db:"rom_path"`
	SystemName string `db:"system_name"`
	GameName   string `db:"game_name"`
	PlayCount  int    `db:"play_count"`
	PlayedAt   int64  `db:"played_at"`
}

func (r *playHistoryRow) record() model.PlayRecord {
	return model.PlayRecord{
		ID:        r.ID,
		SessionID: r.SessionID,
		Path:      r.RomPath,
		System:    r.SystemName,
		Name:      r.GameName,
		PlayCount: r.PlayCount,
		PlayedAt:  r.PlayedAt,
	}
}

type playHistoryDao struct {
	dbGetter DatabaseGetter
	now      func() time.Time
}

func newPlayHistoryDao(getter DatabaseGetter) *playHistoryDao {
	return &playHistoryDao{
		dbGetter: getter,
		now:      time.Now,
	}
}

// Record appends one play to the history and returns it with its session id.
func (dao *playHistoryDao) Record(ctx context.Context, rec model.PlayRecord) (*model.PlayRecord, error) {
	db := dao.dbGetter()
	if db == nil {
		return nil, fmt.Errorf("play history dao not initialised")
	}
	if rec.SessionID == "" {
		rec.SessionID = uuid.NewString()
	}
	if rec.PlayedAt == 0 {
		rec.PlayedAt = dao.now().Unix()
	}
	payload := []map[string]interface{}{{
		"session_id":  rec.SessionID,
		"rom_path":    rec.Path,
		"system_name": rec.System,
		"game_name":   rec.Name,
		"play_count":  rec.PlayCount,
		"played_at":   rec.PlayedAt,
	}}
	insertSQL, insertArgs, err := builder.BuildInsert(playHistoryTableName, payload)
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, insertSQL, insertArgs...)
	if err != nil {
		return nil, fmt.Errorf("insert play history: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return &rec, nil
}

// Recent returns the latest plays, newest first. A non-empty path narrows
// the result to one game.
func (dao *playHistoryDao) Recent(ctx context.Context, path string, limit int) ([]model.PlayRecord, error) {
	db := dao.dbGetter()
	if db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	where := map[string]interface{}{
		"_orderby": "played_at desc",
		"_limit":   []uint{0, uint(limit)},
	}
	if path != "" {
		where["rom_path"] = path
	}
	var rows []*playHistoryRow
	if err := dbkit.SimpleQuery(ctx, db, playHistoryTableName, where, &rows, dbkit.ScanWithTagName("db")); err != nil {
		return nil, fmt.Errorf("query play history: %w", err)
	}
	out := make([]model.PlayRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

// DeleteByPath drops the history of a game removed from the library.
func (dao *playHistoryDao) DeleteByPath(ctx context.Context, path string) (int64, error) {
	db := dao.dbGetter()
	if db == nil {
		return 0, nil
	}
	query, args, err := builder.BuildDelete(playHistoryTableName, map[string]interface{}{"rom_path": path})
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete play history: %w", err)
	}
	return res.RowsAffected()
}
