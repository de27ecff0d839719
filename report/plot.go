package report

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

var (
	trainColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	testColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	selectedColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

// PlotCV builds the learning curve of mean train and held-out RMSE per
// boosting round, with the selected round marked.
func PlotCV(cv *gbm.CVResult) (*plot.Plot, error) {
	if cv == nil || len(cv.Rounds) == 0 {
		return nil, errors.NewValueError("report.PlotCV", "no cross-validation rounds")
	}

	train := make(plotter.XYs, len(cv.Rounds))
	test := make(plotter.XYs, len(cv.Rounds))
	lo, hi := cv.Rounds[0].TestRMSEMean, cv.Rounds[0].TestRMSEMean
	for i, r := range cv.Rounds {
		train[i] = plotter.XY{X: float64(r.Round), Y: r.TrainRMSEMean}
		test[i] = plotter.XY{X: float64(r.Round), Y: r.TestRMSEMean}
		lo = min(lo, r.TrainRMSEMean, r.TestRMSEMean)
		hi = max(hi, r.TrainRMSEMean, r.TestRMSEMean)
	}

	p := plot.New()
	p.Title.Text = "Cross-validated RMSE by boosting round"
	p.X.Label.Text = "Round"
	p.Y.Label.Text = "RMSE"
	p.Add(plotter.NewGrid())

	trainLine, err := plotter.NewLine(train)
	if err != nil {
		return nil, errors.Wrap(err, "report.PlotCV")
	}
	trainLine.Color = trainColor
	trainLine.Width = vg.Points(1.5)
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	testLine, err := plotter.NewLine(test)
	if err != nil {
		return nil, errors.Wrap(err, "report.PlotCV")
	}
	testLine.Color = testColor
	testLine.Width = vg.Points(1.5)
	p.Add(testLine)
	p.Legend.Add("test", testLine)

	best := float64(cv.BestRound)
	marker, err := plotter.NewLine(plotter.XYs{{X: best, Y: lo}, {X: best, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "report.PlotCV")
	}
	marker.Color = selectedColor
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(marker)

	point, err := plotter.NewScatter(plotter.XYs{{X: best, Y: cv.BestScore}})
	if err != nil {
		return nil, errors.Wrap(err, "report.PlotCV")
	}
	point.Color = selectedColor
	point.Shape = draw.CircleGlyph{}
	point.Radius = vg.Points(4)
	p.Add(point)
	p.Legend.Add("selected round", point)
	p.Legend.Top = true

	return p, nil
}

// SaveCVPlot writes the learning curve to path. The image format follows
// the file extension (png, svg, pdf, ...).
func SaveCVPlot(cv *gbm.CVResult, path string) error {
	p, err := PlotCV(cv)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report.SaveCVPlot: %s", path)
	}
	return nil
}
