package app

import (
	"context"

	"github.com/spf13/pflag"
)

// NewCollectionCommand creates an empty, enabled custom collection.
type NewCollectionCommand struct {
	envCommand
	name string
}

func NewNewCollectionCommand() *NewCollectionCommand { return &NewCollectionCommand{} }

func (c *NewCollectionCommand) Name() string { return "new-collection" }

func (c *NewCollectionCommand) Desc() string {
	return "新建自定义合集, 名称会被清理并去重"
}

func (c *NewCollectionCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.name, "name", "", "合集名称, 为空时使用 New Collection")
}

func (c *NewCollectionCommand) PreRun(ctx context.Context) error { return nil }

func (c *NewCollectionCommand) Run(ctx context.Context) error {
	if err := c.open(ctx); err != nil {
		return err
	}
	name, err := c.env.Manager.AddNewCustomCollection(ctx, c.name)
	if err != nil {
		return err
	}
	cd, _ := c.env.Manager.Collection(name)
	return printJSON(struct {
		Name    string `json:"name"`
		File    string `json:"file"`
		Bundled bool   `json:"bundled"`
	}{Name: name, File: c.env.Manager.CustomCollectionPath(name), Bundled: cd != nil && c.env.Manager.IsBundled(cd)})
}

func init() {
	RegisterRunner("new-collection", func() IRunner { return NewNewCollectionCommand() })
}
