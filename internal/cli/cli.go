package cli

import (
	"context"

	"github.com/xxxsen/retrolib/internal/app"
	"github.com/xxxsen/retrolib/internal/config"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "retrolib",
	Short: "Browse, filter and curate game collections built from gamelist.xml",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Log.File, cfg.Log.Level, 0, 0, 0, cfg.Log.File == "")
		config.SetDefault(cfg)
		logutil.GetLogger(commandContext(cmd)).Debug("config loaded",
			zap.String("rom_dir", cfg.RomDir), zap.String("collections_dir", cfg.CollectionsDir))
		return nil
	},
	SilenceUsage: true,
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径, 默认依次查找 ./config.json 与 /etc/retrolib.json")
	for _, r := range app.RunnerList() {
		runner := app.MustResolveRunner(r)
		subcmd := &cobra.Command{
			Use:   runner.Name(),
			Short: runner.Desc(),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := commandContext(cmd)
				if err := runner.PreRun(ctx); err != nil {
					return err
				}
				runErr := runner.Run(ctx)
				if err := runner.PostRun(ctx); err != nil && runErr == nil {
					return err
				}
				return runErr
			},
		}
		runner.Init(subcmd.Flags())
		rootCmd.AddCommand(subcmd)
	}
}
