package app

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// EnableCommand replaces the enabled collection sets and persists them.
type EnableCommand struct {
	envCommand
	flags  *pflag.FlagSet
	auto   string
	custom string
	bundle bool
}

func NewEnableCommand() *EnableCommand { return &EnableCommand{} }

func (c *EnableCommand) Name() string { return "enable" }

func (c *EnableCommand) Desc() string {
	return "设置启用的自动合集与自定义合集并保存"
}

func (c *EnableCommand) Init(f *pflag.FlagSet) {
	c.flags = f
	f.StringVar(&c.auto, "auto", "", "逗号分隔的自动合集名称, 例如 all,recent,favorites")
	f.StringVar(&c.custom, "custom", "", "逗号分隔的自定义合集名称")
	f.BoolVar(&c.bundle, "bundle", true, "将无主题目录的自定义合集收纳到 collections 系统下")
}

func (c *EnableCommand) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

func (c *EnableCommand) PreRun(ctx context.Context) error {
	if !c.changed("auto") && !c.changed("custom") && !c.changed("bundle") {
		return errors.New("enable requires at least one of --auto, --custom, --bundle")
	}
	return nil
}

func (c *EnableCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	m := c.env.Manager
	if c.changed("bundle") {
		if err := m.SetBundleCustom(ctx, c.bundle); err != nil {
			return err
		}
	}
	if c.changed("auto") || c.changed("custom") {
		current := m.Settings()
		auto, custom := current.AutoEnabled, current.CustomEnabled
		if c.changed("auto") {
			auto = splitCSV(c.auto)
		}
		if c.changed("custom") {
			custom = splitCSV(c.custom)
		}
		if err := m.SetEnabled(ctx, auto, custom); err != nil {
			return err
		}
	}
	s := m.Settings()
	logutil.GetLogger(ctx).Info("collections enabled",
		zap.Strings("auto", s.AutoEnabled), zap.Strings("custom", s.CustomEnabled), zap.Bool("bundle", s.BundleCustom))
	return printJSON(collectionReport(ctx, m, false))
}

func init() {
	RegisterRunner("enable", func() IRunner { return NewEnableCommand() })
}
