package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"fitdash/internal/insights"
)

// DateLayout formats the x axis of the trends chart
const DateLayout = "Jan 2"

// Report renders the analysis as a standalone HTML page: a bar chart of the
// selected metric over the period and the athlete profile radar.
func Report(w io.Writer, a insights.Analysis) error {
	page := components.NewPage()
	page.PageTitle = "fitdash - Performance Analytics"
	page.AddCharts(
		trendsChart(a),
		profileChart(a),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func trendsChart(a insights.Analysis) *charts.Bar {
	bar := charts.NewBar()

	subtitle := a.Period.Label()
	if !a.Live {
		subtitle += " (sample data)"
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Performance Trends",
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         a.Metric.Label(),
			NameLocation: "middle",
			NameGap:      40,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
	)

	bar.SetXAxis(a.DateLabels(DateLayout))
	bar.AddSeries(a.Metric.Label(), barItems(a.Values()))

	return bar
}

func profileChart(a insights.Analysis) *charts.Radar {
	radar := charts.NewRadar()

	indicators := make([]*opts.Indicator, 0, len(a.Radar))
	values := make([]float64, 0, len(a.Radar))
	for _, p := range a.Radar {
		indicators = append(indicators, &opts.Indicator{Name: p.Channel, Max: float32(p.FullMark)})
		values = append(values, round1(p.Value))
	}

	radar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Athlete Profile",
		}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator: indicators,
			Shape:     "polygon",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	radar.AddSeries("Athlete", []opts.RadarData{{Name: "Athlete", Value: values}}).
		SetSeriesOptions(
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.6)}),
		)

	return radar
}

func barItems(values []float64) []opts.BarData {
	items := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.BarData{Value: round1(v)})
	}
	return items
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
