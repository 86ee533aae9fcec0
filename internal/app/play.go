package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/constant"
	appdb "github.com/xxxsen/retrolib/internal/db"
	"github.com/xxxsen/retrolib/internal/model"
)

// PlayCommand records a launch of a game: the play counters in its
// metadata, a history row, and the resulting collection updates.
type PlayCommand struct {
	envCommand
	path string
	now  func() time.Time
}

func NewPlayCommand() *PlayCommand { return &PlayCommand{now: time.Now} }

func (c *PlayCommand) Name() string { return "play" }

func (c *PlayCommand) Desc() string {
	return "记录一次游戏启动, 更新游玩次数与最近游玩合集"
}

func (c *PlayCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.path, "path", "", "游戏 ROM 路径(绝对路径或相对 rom_dir)")
}

func (c *PlayCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.path) == "" {
		return errors.New("play requires --path")
	}
	return nil
}

func (c *PlayCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	sys, game, err := c.env.FindGame(c.path)
	if err != nil {
		return err
	}
	at := c.now()
	md := game.Metadata()
	count := md.GetInt(catalog.MetaPlayCount) + 1
	md.Set(catalog.MetaPlayCount, strconv.Itoa(count))
	md.Set(catalog.MetaLastPlayed, at.Format(constant.LastPlayedLayout))
	c.env.Manager.Refresh(ctx, game)

	if err := c.env.History(ctx); err != nil {
		return err
	}
	rec, err := appdb.PlayHistoryDao.Record(ctx, model.PlayRecord{
		Path:      game.Path(),
		System:    sys.Name(),
		Name:      game.Name(),
		PlayCount: count,
		PlayedAt:  at.Unix(),
	})
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("game played",
		zap.String("game", game.Name()), zap.String("system", sys.Name()),
		zap.Int("play_count", count), zap.String("session", rec.SessionID))
	return printJSON(rec)
}

func init() {
	RegisterRunner("play", func() IRunner { return NewPlayCommand() })
}
