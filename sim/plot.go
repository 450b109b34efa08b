package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// NewStatePlot creates new line plot of the state trajectory x sampled at times t.
// Each row of x is drawn as a separate line named by the corresponding entry in labels.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * x is nil or t is empty
// * x does not have a column for every element of t
// * labels are not nil and there is not a label for every row of x
// * gonum plot fails to be created
func NewStatePlot(title string, t []float64, x *mat.Dense, labels []string) (*plot.Plot, error) {
	return newTrajectoryPlot(title, "State Vector", t, x, labels)
}

// NewOutputPlot creates new line plot of the output trajectory y sampled at times t.
// It fails on the same conditions as NewStatePlot.
func NewOutputPlot(title string, t []float64, y *mat.Dense, labels []string) (*plot.Plot, error) {
	return newTrajectoryPlot(title, "Output Vector", t, y, labels)
}

func newTrajectoryPlot(title, ylabel string, t []float64, data *mat.Dense, labels []string) (*plot.Plot, error) {
	if data == nil || len(t) == 0 {
		return nil, fmt.Errorf("invalid data supplied")
	}

	rows, cols := data.Dims()
	if cols != len(t) {
		return nil, fmt.Errorf("invalid data dimensions: %d samples, %d time instants", cols, len(t))
	}

	if labels != nil && len(labels) != rows {
		return nil, fmt.Errorf("invalid number of labels: %d != %d", len(labels), rows)
	}

	p := plot.New()

	p.Title.Text = title
	p.X.Label.Text = "Time (sec)"
	p.Y.Label.Text = ylabel

	p.Add(plotter.NewGrid())

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	for i := 0; i < rows; i++ {
		line, err := plotter.NewLine(makePoints(t, data.RawRowView(i)))
		if err != nil {
			return nil, fmt.Errorf("failed to create line: %v", err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)

		p.Add(line)

		name := fmt.Sprintf("x%d", i)
		if labels != nil {
			name = labels[i]
		}
		p.Legend.Add(name, line)
	}

	return p, nil
}

func makePoints(t, v []float64) plotter.XYs {
	pts := make(plotter.XYs, len(t))
	for i := range pts {
		pts[i].X = t[i]
		pts[i].Y = v[i]
	}

	return pts
}
