package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteRateChart renders the event-rate series as a standalone HTML page.
func WriteRateChart(w io.Writer, title string, bins []RateBin) error {
	x := make([]string, 0, len(bins))
	y := make([]opts.LineData, 0, len(bins))
	for _, b := range bins {
		x = append(x, fmt.Sprintf("%d", b.StartT))
		y = append(y, opts.LineData{Value: b.Records})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("bins=%d", len(bins))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "records", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(x).AddSeries("records", y)
	return line.Render(w)
}
