package dashboard

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/metrics"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

const chartRows = 10

// RenderROASChart draws the best ad sets by ROAS with the break-even line.
func RenderROASChart(w io.Writer, ov models.Overview, breakEven float64) error {
	top := metrics.Top(ov.AdSets, chartRows)

	names := make([]string, 0, len(top))
	roas := make([]opts.BarData, 0, len(top))
	spend := make([]opts.BarData, 0, len(top))
	for _, r := range top {
		names = append(names, r.Name)
		roas = append(roas, opts.BarData{Value: math.Round(r.ROAS*100) / 100})
		spend = append(spend, opts.BarData{Value: math.Round(r.Spend*100) / 100})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Ads Manager · ROAS", Width: "960px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Top ad sets by ROAS", Subtitle: "Break-even " + Ratio(breakEven)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("ROAS", roas,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "Break-even", YAxis: breakEven}),
		).
		AddSeries("Spend (£)", spend)
	return bar.Render(w)
}
