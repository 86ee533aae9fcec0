package app

import (
	"context"
	"strings"
)

// envCommand is embedded by runners that work on the loaded library. The
// environment is opened by Run and persisted by PostRun.
type envCommand struct {
	env *Environment
}

func (c *envCommand) open(ctx context.Context) error {
	if c.env != nil {
		return nil
	}
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	c.env = env
	return nil
}

func (c *envCommand) PostRun(ctx context.Context) error {
	if c.env == nil {
		return nil
	}
	err := c.env.Close(ctx)
	c.env = nil
	return err
}

func splitCSV(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
