package app

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/xxxsen/retrolib/internal/filter"
	"github.com/xxxsen/retrolib/internal/model"
)

// RebuildIndexCommand rebuilds every filter index and prints the key counts.
type RebuildIndexCommand struct {
	envCommand
	system string
}

func NewRebuildIndexCommand() *RebuildIndexCommand { return &RebuildIndexCommand{} }

func (c *RebuildIndexCommand) Name() string { return "rebuild-index" }

func (c *RebuildIndexCommand) Desc() string {
	return "重建所有系统与合集的过滤索引并输出各维度计数"
}

func (c *RebuildIndexCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.system, "system", "", "仅输出指定系统, 为空时输出全部")
}

func (c *RebuildIndexCommand) PreRun(ctx context.Context) error { return nil }

func (c *RebuildIndexCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	c.env.Manager.RebuildIndexes(ctx)
	var out []model.IndexSummary
	for _, sys := range c.env.Library.Systems() {
		if c.system != "" && sys.Name() != c.system {
			continue
		}
		out = append(out, indexSummary(sys.Name(), sys.Index()))
	}
	if out == nil {
		out = []model.IndexSummary{}
	}
	return printJSON(out)
}

func indexSummary(name string, idx *filter.Index) model.IndexSummary {
	sum := model.IndexSummary{
		System: name,
		Games:  idx.Len(),
		Keys:   make(map[string]map[string]int),
	}
	for _, d := range idx.Decls() {
		sum.Keys[d.Type.String()] = d.AllKeys
	}
	return sum
}

func init() {
	RegisterRunner("rebuild-index", func() IRunner { return NewRebuildIndexCommand() })
}
