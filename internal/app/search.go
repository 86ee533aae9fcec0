package app

import (
	"context"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/library"
	"github.com/xxxsen/retrolib/internal/search"
)

// SearchCommand runs a title search over the games a system currently shows.
type SearchCommand struct {
	envCommand
	filterFlags
	system string
	query  string
	limit  int
}

func NewSearchCommand() *SearchCommand { return &SearchCommand{} }

func (c *SearchCommand) Name() string { return "search" }

func (c *SearchCommand) Desc() string {
	return "在系统或合集的可见游戏中按标题搜索"
}

func (c *SearchCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.system, "system", "", "系统或合集名称, 为空时搜索全部游戏")
	f.StringVar(&c.query, "query", "", "搜索关键字, 支持 genre:xxx 形式的字段查询")
	f.IntVar(&c.limit, "limit", 20, "最多返回的结果数")
	c.filterFlags.bind(f)
}

func (c *SearchCommand) PreRun(ctx context.Context) error { return nil }

func (c *SearchCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	var sys *library.System
	if c.system == "" {
		sys = c.env.Manager.AllGames(ctx)
	} else {
		found, err := c.env.FindSystem(c.system)
		if err != nil {
			return err
		}
		sys = found
	}
	c.filterFlags.apply(sys.Index())

	ti, err := search.NewTitleIndex()
	if err != nil {
		return err
	}
	defer ti.Close()
	if err := ti.IndexGames(sys.VisibleGames()); err != nil {
		return err
	}
	hits, err := ti.Search(c.query, c.limit)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("search finished",
		zap.String("system", sys.Name()), zap.String("query", c.query), zap.Int("hits", len(hits)))
	return printJSON(gameItems(hits))
}

func init() {
	RegisterRunner("search", func() IRunner { return NewSearchCommand() })
}
