package app

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/model"
)

// EditCollectionCommand toggles games in a custom collection under edit mode.
type EditCollectionCommand struct {
	envCommand
	name  string
	paths []string
}

func NewEditCollectionCommand() *EditCollectionCommand { return &EditCollectionCommand{} }

func (c *EditCollectionCommand) Name() string { return "edit-collection" }

func (c *EditCollectionCommand) Desc() string {
	return "编辑自定义合集: 逐个切换游戏的成员状态并保存"
}

func (c *EditCollectionCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.name, "name", "", "自定义合集名称")
	f.StringArrayVar(&c.paths, "path", nil, "游戏 ROM 路径, 可重复指定")
}

func (c *EditCollectionCommand) PreRun(ctx context.Context) error {
	c.name = strings.TrimSpace(c.name)
	if c.name == "" {
		return errors.New("edit-collection requires --name")
	}
	if len(c.paths) == 0 {
		return errors.New("edit-collection requires at least one --path")
	}
	return nil
}

func (c *EditCollectionCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	m := c.env.Manager
	games := make([]*catalog.FileData, 0, len(c.paths))
	for _, p := range c.paths {
		_, game, err := c.env.FindGame(p)
		if err != nil {
			return err
		}
		games = append(games, game)
	}
	if err := m.StartEditing(ctx, c.name); err != nil {
		return err
	}
	defer m.ExitEditing()
	cd, _ := m.Collection(c.name)

	results := make([]model.ToggleResult, 0, len(games))
	for _, game := range games {
		changed := m.ToggleGameInCollection(ctx, game)
		results = append(results, model.ToggleResult{
			Game:       gameItem(game),
			Collection: c.name,
			Member:     cd.System.Root().Child(game.Path()) != nil,
			Changed:    changed,
		})
	}
	if err := m.Save(ctx, cd); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("collection edited",
		zap.String("collection", c.name), zap.Int("games", len(cd.System.Games())))
	return printJSON(results)
}

func init() {
	RegisterRunner("edit-collection", func() IRunner { return NewEditCollectionCommand() })
}
