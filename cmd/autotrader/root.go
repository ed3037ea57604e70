package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autotrader/internal/config"
	"autotrader/internal/logger"
)

const defaultConfigPath = "configs/config.yaml"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "autotrader",
		Short:         "把文字交易决策转成现货订单并维护按币种的持仓台账",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defPath := os.Getenv("AUTOTRADER_CONFIG")
	if defPath == "" {
		defPath = defaultConfigPath
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defPath, "配置文件路径")

	cmd.AddCommand(
		newRunCmd(opts),
		newExecuteCmd(opts),
		newParseCmd(),
		newLedgerCmd(opts),
	)
	return cmd
}

// loadConfig 读取配置并应用日志设置，返回的 closer 负责关闭日志文件。
func (o *rootOptions) loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return cfg, closer, nil
}

// setupLogOutput 把日志同时写到 stderr 和文件。
func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		logger.SetOutput(os.Stderr)
		return nil, nil
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
