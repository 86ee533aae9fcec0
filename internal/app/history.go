package app

import (
	"context"

	"github.com/spf13/pflag"

	appdb "github.com/xxxsen/retrolib/internal/db"
	"github.com/xxxsen/retrolib/internal/model"
)

// HistoryCommand prints the latest plays from the history store.
type HistoryCommand struct {
	envCommand
	limit int
	path  string
}

func NewHistoryCommand() *HistoryCommand { return &HistoryCommand{} }

func (c *HistoryCommand) Name() string { return "history" }

func (c *HistoryCommand) Desc() string {
	return "输出最近的游玩记录"
}

func (c *HistoryCommand) Init(f *pflag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "最多输出的记录数")
	f.StringVar(&c.path, "path", "", "仅输出指定游戏的记录")
}

func (c *HistoryCommand) PreRun(ctx context.Context) error { return nil }

func (c *HistoryCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	if err := c.env.History(ctx); err != nil {
		return err
	}
	path := c.path
	if path != "" {
		if _, game, err := c.env.FindGame(path); err == nil {
			path = game.Path()
		}
	}
	records, err := appdb.PlayHistoryDao.Recent(ctx, path, c.limit)
	if err != nil {
		return err
	}
	if records == nil {
		records = []model.PlayRecord{}
	}
	return printJSON(records)
}

func init() {
	RegisterRunner("history", func() IRunner { return NewHistoryCommand() })
}
