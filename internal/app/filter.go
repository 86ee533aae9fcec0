package app

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/catalog"
	"github.com/xxxsen/retrolib/internal/filter"
	"github.com/xxxsen/retrolib/internal/library"
	"github.com/xxxsen/retrolib/internal/model"
)

// filterFlags carries one repeatable flag per filter dimension.
type filterFlags struct {
	genre   []string
	players []string
	pubdev  []string
	rating  []string
}

func (ff *filterFlags) bind(f *pflag.FlagSet) {
	f.StringArrayVar(&ff.genre, "genre", nil, "按类型过滤, 可重复指定")
	f.StringArrayVar(&ff.players, "players", nil, "按玩家人数过滤, 可重复指定")
	f.StringArrayVar(&ff.pubdev, "pubdev", nil, "按发行商/开发商过滤, 可重复指定")
	f.StringArrayVar(&ff.rating, "rating", nil, "按评分过滤, 可写星数 3 或 3 STARS, 可重复指定")
}

func (ff *filterFlags) apply(idx *filter.Index) {
	selections := []struct {
		t      filter.Type
		values []string
	}{
		{filter.Genre, ff.genre},
		{filter.Players, ff.players},
		{filter.PubDev, ff.pubdev},
		{filter.Rating, ff.rating},
	}
	for _, s := range selections {
		if len(s.values) > 0 {
			idx.SetFilter(s.t, s.values)
		}
	}
}

// FilterCommand applies a filter selection to one system and prints the
// games that remain visible.
type FilterCommand struct {
	envCommand
	filterFlags
	system string
	decls  bool
}

func NewFilterCommand() *FilterCommand { return &FilterCommand{} }

func (c *FilterCommand) Name() string { return "filter" }

func (c *FilterCommand) Desc() string {
	return "按类型/人数/厂商/评分过滤系统或合集中的游戏并输出 JSON"
}

func (c *FilterCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.system, "system", "", "系统或合集名称")
	f.BoolVar(&c.decls, "decls", false, "同时输出各过滤维度的键与计数")
	c.filterFlags.bind(f)
}

func (c *FilterCommand) PreRun(ctx context.Context) error {
	c.system = strings.TrimSpace(c.system)
	if c.system == "" {
		return errors.New("filter requires --system")
	}
	return nil
}

func (c *FilterCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	sys, err := c.env.FindSystem(c.system)
	if err != nil {
		return err
	}
	idx := sys.Index()
	c.filterFlags.apply(idx)
	visible := sys.VisibleGames()
	logutil.GetLogger(ctx).Info("filter applied",
		zap.String("system", sys.Name()), zap.Bool("filtered", idx.IsFiltered()), zap.Int("visible", len(visible)))
	return printJSON(filterResult(sys, visible, c.decls))
}

func filterResult(sys *library.System, visible []*catalog.FileData, withDecls bool) model.FilterResult {
	res := model.FilterResult{
		System:   sys.Name(),
		Filtered: sys.Index().IsFiltered(),
		Total:    len(sys.Games()),
		Visible:  len(visible),
		Games:    gameItems(visible),
	}
	if withDecls {
		res.Decls = filterDecls(sys.Index())
	}
	return res
}

func filterDecls(idx *filter.Index) []model.FilterDecl {
	var out []model.FilterDecl
	for _, d := range idx.Decls() {
		fd := model.FilterDecl{
			Type:     d.Type.String(),
			Label:    d.MenuLabel,
			Filtered: d.FilteredBy,
			Keys:     d.AllKeys,
			Selected: d.Selected,
		}
		if d.HasSecondary {
			fd.Secondary = d.SecondaryKey
		}
		out = append(out, fd)
	}
	return out
}

func init() {
	RegisterRunner("filter", func() IRunner { return NewFilterCommand() })
}
