package api

import (
	"github.com/deliverable/cityinsights/internal/dashboard"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func buildChartPage(view *dashboard.View) *components.Page {
	page := components.NewPage()
	page.PageTitle = "City insights 2022"
	for _, chart := range view.Charts {
		page.AddCharts(buildLineChart(chart))
	}
	return page
}

// buildLineChart draws one series per city on a time axis. Missing days are
// left out of a series rather than plotted as zero.
func buildLineChart(chart dashboard.Chart) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: chart.Title,
			Width:     "960px",
			Height:    "440px",
		}),
		charts.WithTitleOpts(opts.Title{Title: chart.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: chart.DateLabel, Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: chart.ValueLabel}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
	)

	series := make(map[string][]opts.LineData)
	var cities []string
	for _, row := range chart.Rows {
		if _, seen := series[row.City]; !seen {
			cities = append(cities, row.City)
		}
		series[row.City] = append(series[row.City], opts.LineData{
			Name:  row.City,
			Value: []interface{}{row.Date.String(), row.Value},
		})
	}
	for _, city := range cities {
		line.AddSeries(city, series[city])
	}
	return line
}
