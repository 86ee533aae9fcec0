package app

import (
	"context"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/collection"
	"github.com/xxxsen/retrolib/internal/model"
)

// CollectionsCommand prints the state of every auto and custom collection.
type CollectionsCommand struct {
	envCommand
	populate bool
}

func NewCollectionsCommand() *CollectionsCommand { return &CollectionsCommand{} }

func (c *CollectionsCommand) Name() string { return "collections" }

func (c *CollectionsCommand) Desc() string {
	return "列出自动合集与自定义合集的状态"
}

func (c *CollectionsCommand) Init(f *pflag.FlagSet) {
	f.BoolVar(&c.populate, "populate", false, "统计前填充未启用的合集")
}

func (c *CollectionsCommand) PreRun(ctx context.Context) error { return nil }

func (c *CollectionsCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	return printJSON(collectionReport(ctx, c.env.Manager, c.populate))
}

func collectionReport(ctx context.Context, m *collection.Manager, populate bool) model.CollectionReport {
	report := model.CollectionReport{
		BundleCustom: m.Settings().BundleCustom,
		Editing:      m.Editing(),
	}
	state := func(cd *collection.CollectionData) model.CollectionState {
		if populate && !cd.Populated {
			if err := m.Populate(ctx, cd); err != nil {
				logutil.GetLogger(ctx).Warn("populate collection failed", zap.String("collection", cd.Decl.Name), zap.Error(err))
			}
		}
		return model.CollectionState{
			Name:      cd.Decl.Name,
			LongName:  cd.Decl.LongName,
			Custom:    cd.Decl.IsCustom,
			Enabled:   cd.Enabled,
			Populated: cd.Populated,
			Bundled:   m.IsBundled(cd),
			Games:     len(cd.System.Games()),
		}
	}
	for _, cd := range m.AutoCollections() {
		report.Auto = append(report.Auto, state(cd))
	}
	for _, cd := range m.CustomCollections() {
		report.Custom = append(report.Custom, state(cd))
	}
	return report
}

func init() {
	RegisterRunner("collections", func() IRunner { return NewCollectionsCommand() })
}
