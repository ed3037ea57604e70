package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autotrader/internal/app"
	"autotrader/internal/pkg/symbol"
)

func newLedgerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "查看持仓台账",
	}
	cmd.AddCommand(newLedgerSymbolsCmd(opts), newLedgerShowCmd(opts))
	return cmd
}

func newLedgerSymbolsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "列出有台账的币种",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closeLog, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()
			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			if c, ok := store.(interface{ Close() error }); ok {
				defer c.Close()
			}
			syms, err := store.ListSymbols(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderSymbols(syms))
			return err
		},
	}
}

func newLedgerShowCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show SYMBOL",
		Short: "显示某币种最近的交易记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()
			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			if c, ok := store.(interface{ Close() error }); ok {
				defer c.Close()
			}
			if limit <= 0 {
				limit = cfg.Trading.Retention
			}
			sym := symbol.Clean(args[0])
			records := store.Load(cmd.Context(), sym, limit)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderRecords(sym, records))
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "最多显示条数，默认为保留条数")
	return cmd
}
