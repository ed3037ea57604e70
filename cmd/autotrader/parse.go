package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autotrader/internal/decision"
)

func newParseCmd() *cobra.Command {
	var in textInput
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "只解析决策文本，打印动作与止盈止损",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := in.read(cmd)
			if err != nil {
				return err
			}
			d := decision.Parse(text)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderDecision(d))
			return err
		},
	}
	in.bind(cmd)
	return cmd
}
