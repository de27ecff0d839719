// Package report renders pipeline results as text tables, JSON and a
// cross-validation learning-curve plot.
package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/regselect/linear"
	"github.com/YuminosukeSato/regselect/pipeline"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

// WriteTable writes the held-out evaluation of every model in rep, followed by
// the linear coefficient table, the nested F test and the boosted feature
// importances when those are present.
func WriteTable(w io.Writer, rep *pipeline.Report) error {
	if rep == nil {
		return errors.NewValueError("report.WriteTable", "nil report")
	}
	if err := writeSection(w, "Held-out evaluation"); err != nil {
		return err
	}
	t := newTable(w, []string{"Model", "RMSE", "R²", "Rounds", "Features"})
	for _, ev := range rep.Evaluations {
		r2, rounds := "-", "-"
		if ev.RSquared != nil {
			r2 = formatFloat(*ev.RSquared)
		}
		if ev.SelectedRounds != nil {
			rounds = strconv.Itoa(*ev.SelectedRounds)
		}
		t.Append([]string{ev.ModelName, formatFloat(ev.RMSE), r2, rounds, strconv.Itoa(len(ev.Features))})
	}
	t.Render()

	if rep.Linear != nil && rep.Linear.Full != nil {
		if err := writeSection(w, "Linear model"); err != nil {
			return err
		}
		WriteCoefficients(w, rep.Linear.Full)
		if rep.Linear.ANOVA != nil {
			if err := writeSection(w, "Nested F test"); err != nil {
				return err
			}
			WriteANOVA(w, rep.Linear.ANOVA)
		}
	}
	if rep.Boosted != nil && len(rep.Boosted.Importance) > 0 {
		if err := writeSection(w, "Boosted feature importance (gain)"); err != nil {
			return err
		}
		WriteImportance(w, rep.Boosted.Importance)
	}
	return nil
}

// WriteCoefficients writes the coefficient table of a fitted linear model.
func WriteCoefficients(w io.Writer, m *linear.LinearRegression) {
	t := newTable(w, []string{"Term", "Estimate", "Std. Error", "t value", "Pr(>|t|)"})
	for _, c := range m.Coefficients {
		t.Append([]string{c.Name, formatFloat(c.Estimate), formatFloat(c.StdError), formatFloat(c.TStat), formatFloat(c.PValue)})
	}
	t.SetFooter([]string{"", "R²", formatFloat(m.RSquared), "adj. R²", formatFloat(m.AdjRSquared)})
	t.Render()
}

// WriteANOVA writes a two-row analysis of variance table.
func WriteANOVA(w io.Writer, a *linear.ANOVA) {
	t := newTable(w, []string{"Model", "Res.Df", "RSS", "Df", "F", "Pr(>F)"})
	t.Append([]string{termList(a.Reduced), strconv.Itoa(a.DF2 + a.DF1), formatFloat(a.RSSReduced), "", "", ""})
	t.Append([]string{termList(a.Full), strconv.Itoa(a.DF2), formatFloat(a.RSSFull), strconv.Itoa(a.DF1), formatFloat(a.F), formatFloat(a.PValue)})
	t.Render()
}

// WriteImportance writes normalised boosted-tree feature importances.
func WriteImportance(w io.Writer, scores []gbm.FeatureScore) {
	t := newTable(w, []string{"Feature", "Score"})
	for _, s := range scores {
		t.Append([]string{s.Feature, formatFloat(s.Score)})
	}
	t.Render()
}

// WriteCV writes the per-round cross-validation curve.
func WriteCV(w io.Writer, cv *gbm.CVResult) {
	t := newTable(w, []string{"Round", "Train RMSE", "Train Std", "Test RMSE", "Test Std"})
	for _, r := range cv.Rounds {
		round := strconv.Itoa(r.Round)
		if r.Round == cv.BestRound {
			round += " *"
		}
		t.Append([]string{round, formatFloat(r.TrainRMSEMean), formatFloat(r.TrainRMSEStd), formatFloat(r.TestRMSEMean), formatFloat(r.TestRMSEStd)})
	}
	t.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func writeSection(w io.Writer, title string) error {
	_, err := io.WriteString(w, "\n"+title+"\n")
	return err
}

func termList(names []string) string {
	if len(names) == 0 {
		return linear.InterceptName
	}
	out := names[0]
	for _, n := range names[1:] {
		out += " + " + n
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
