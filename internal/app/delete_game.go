package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appdb "github.com/xxxsen/retrolib/internal/db"
)

// DeleteGameCommand removes a game from its system, every collection and
// the play history. The ROM file itself is left on disk.
type DeleteGameCommand struct {
	envCommand
	path        string
	keepHistory bool
}

func NewDeleteGameCommand() *DeleteGameCommand { return &DeleteGameCommand{} }

func (c *DeleteGameCommand) Name() string { return "delete-game" }

func (c *DeleteGameCommand) Desc() string {
	return "从系统、所有合集与游玩记录中移除游戏(不删除 ROM 文件)"
}

func (c *DeleteGameCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.path, "path", "", "游戏 ROM 路径(绝对路径或相对 rom_dir)")
	f.BoolVar(&c.keepHistory, "keep-history", false, "保留游玩记录")
}

func (c *DeleteGameCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.path) == "" {
		return errors.New("delete-game requires --path")
	}
	return nil
}

func (c *DeleteGameCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	sys, game, err := c.env.FindGame(c.path)
	if err != nil {
		return err
	}
	c.env.Manager.DeleteAllTraces(ctx, game)
	if !sys.RemoveGame(game) {
		return fmt.Errorf("game %s already removed from %s", game.Path(), sys.Name())
	}
	var dropped int64
	if !c.keepHistory {
		if err := c.env.History(ctx); err != nil {
			return err
		}
		if dropped, err = appdb.PlayHistoryDao.DeleteByPath(ctx, game.Path()); err != nil {
			return err
		}
	}
	logutil.GetLogger(ctx).Info("game deleted",
		zap.String("game", game.Name()), zap.String("system", sys.Name()), zap.Int64("history_rows", dropped))
	return printJSON(gameItem(game))
}

func init() {
	RegisterRunner("delete-game", func() IRunner { return NewDeleteGameCommand() })
}
