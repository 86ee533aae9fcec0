package app

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/collection"
	"github.com/xxxsen/retrolib/internal/model"
)

// FavoriteCommand flips the favorite flag of one game.
type FavoriteCommand struct {
	envCommand
	path string
}

func NewFavoriteCommand() *FavoriteCommand { return &FavoriteCommand{} }

func (c *FavoriteCommand) Name() string { return "favorite" }

func (c *FavoriteCommand) Desc() string {
	return "切换游戏的收藏状态"
}

func (c *FavoriteCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.path, "path", "", "游戏 ROM 路径(绝对路径或相对 rom_dir)")
}

func (c *FavoriteCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.path) == "" {
		return errors.New("favorite requires --path")
	}
	return nil
}

func (c *FavoriteCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	_, game, err := c.env.FindGame(c.path)
	if err != nil {
		return err
	}
	changed := c.env.Manager.Toggle(ctx, game, collection.NameFavorites)
	return printJSON(model.ToggleResult{
		Game:       gameItem(game),
		Collection: collection.NameFavorites,
		Member:     game.Metadata().GetBool(catalog.MetaFavorite),
		Changed:    changed,
	})
}

func init() {
	RegisterRunner("favorite", func() IRunner { return NewFavoriteCommand() })
}
