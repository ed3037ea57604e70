package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"autotrader/internal/app"
	"autotrader/internal/decision"
	"autotrader/internal/executor"
	"autotrader/internal/pkg/jsonutil"
)

type textInput struct {
	text string
	file string
}

func (in *textInput) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.text, "text", "", "决策文本")
	cmd.Flags().StringVar(&in.file, "file", "", "从文件读取决策文本，- 表示 stdin")
}

func (in *textInput) empty() bool {
	return in.text == "" && in.file == ""
}

func (in *textInput) read(cmd *cobra.Command) (string, error) {
	switch {
	case in.text != "" && in.file != "":
		return "", errors.New("--text and --file are mutually exclusive")
	case in.text != "":
		return in.text, nil
	case in.file == "-":
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	case in.file != "":
		raw, err := os.ReadFile(in.file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", in.file, err)
		}
		return string(raw), nil
	default:
		return "", errors.New("one of --text or --file is required")
	}
}

func newExecuteCmd(opts *rootOptions) *cobra.Command {
	var (
		in     textInput
		sym    string
		action string
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "对单个币种执行一次决策，输出 JSON 结果",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sym) == "" {
				return errors.New("--symbol is required")
			}
			var text string
			// 指定 --action 时文本可省略，只用来提取 TP/SL
			if action == "" || !in.empty() {
				t, err := in.read(cmd)
				if err != nil {
					return err
				}
				text = t
			}
			cfg, closeLog, err := opts.loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()
			a, err := app.NewApp(cmd.Context(), cfg, app.WithoutHTTP())
			if err != nil {
				return err
			}
			defer a.Close()

			exec := a.Executor()
			var res executor.Result
			if action != "" {
				d := decision.Parse(text)
				d.Action = decision.NormalizeAction(action)
				res = exec.ExecuteDecision(cmd.Context(), sym, d)
			} else {
				res = exec.Execute(cmd.Context(), sym, text)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), jsonutil.Indent(res))
			return err
		},
	}
	in.bind(cmd)
	cmd.Flags().StringVar(&sym, "symbol", "", "币种，例如 BTC")
	cmd.Flags().StringVar(&action, "action", "", "覆盖文本中的动作（buy/sell/hold 及同义词）")
	return cmd
}
