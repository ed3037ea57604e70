package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"autotrader/internal/app"
	"autotrader/internal/logger"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "启动调度器与 HTTP 接口",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closeLog, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()
			logger.Infof("✓ 配置加载成功（环境=%s，模式=%s）", cfg.App.Env, cfg.Trading.Mode)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			a, err := app.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
}

