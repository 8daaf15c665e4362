package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveRatePlot writes the event-rate series as a PNG at path.
func SaveRatePlot(path, title string, bins []RateBin) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "records"

	pts := make(plotter.XYs, 0, len(bins))
	for _, b := range bins {
		pts = append(pts, plotter.XY{X: float64(b.StartT), Y: float64(b.Records)})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("records", line)

	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}
