package livehttp

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"autotrader/internal/ledger"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBuy           = "#34d399"
	colorSell          = "#f87171"
	colorNeutral       = "#6b7280"
	colorOpen          = "#fbbf24"
)

var renderChart = renderLedgerChart

// renderLedgerChart 把台账画成柱状图：柱高为数量，颜色表示动作，open 记录高亮。
func renderLedgerChart(w io.Writer, sym string, records []ledger.Record) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           "1200px",
			Height:          "480px",
			BackgroundColor: colorBackground,
			PageTitle:       sym + " trades",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         sym,
			Subtitle:      fmt.Sprintf("last %d records", len(records)),
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "quantity",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)

	xAxis := make([]string, len(records))
	data := make([]opts.BarData, len(records))
	for i, rec := range records {
		xAxis[i] = rec.Timestamp
		data[i] = opts.BarData{
			Name:      fmt.Sprintf("%s %s", rec.Decision, rec.Status),
			Value:     rec.Quantity,
			ItemStyle: &opts.ItemStyle{Color: recordColor(rec)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Quantity", data)
	return bar.Render(w)
}

func recordColor(rec ledger.Record) string {
	if rec.Status == ledger.StatusOpen {
		return colorOpen
	}
	switch rec.Decision {
	case "BUY":
		return colorBuy
	case "SELL":
		return colorSell
	default:
		return colorNeutral
	}
}
