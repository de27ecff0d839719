package linear

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
)

// ANOVA is the result of an F test between two nested linear models.
type ANOVA struct {
	Reduced    []string `json:"reduced"`
	Full       []string `json:"full"`
	RSSReduced float64  `json:"rss_reduced"`
	RSSFull    float64  `json:"rss_full"`
	DF1        int      `json:"df1"` // extra predictors in the full model
	DF2        int      `json:"df2"` // residual degrees of freedom of the full model
	F          float64  `json:"f"`
	PValue     float64  `json:"p_value"`
}

// Significant reports whether the extra predictors improve the fit at level alpha.
func (a *ANOVA) Significant(alpha float64) bool {
	return a.PValue < alpha
}

// CompareNested runs the nested-model F test. The two models may be given in
// either order; the one whose predictors are a strict subset of the other's
// is treated as the reduced model. Both must have been fit on the same records
// in the same order: a differing record count is a DimensionError, and a
// differing target column (compared by checksum) is a ValueError.
func CompareNested(a, b *LinearRegression) (*ANOVA, error) {
	const op = "linear.CompareNested"
	if err := a.CheckFitted("CompareNested"); err != nil {
		return nil, err
	}
	if err := b.CheckFitted("CompareNested"); err != nil {
		return nil, err
	}

	reduced, full := a, b
	switch {
	case strictSubset(a.Predictors, b.Predictors):
	case strictSubset(b.Predictors, a.Predictors):
		reduced, full = b, a
	default:
		return nil, errors.NewNonNestedModelsError(op, sortedCopy(a.Predictors), sortedCopy(b.Predictors))
	}
	if reduced.NSamples != full.NSamples {
		return nil, errors.NewDimensionError(op, full.NSamples, reduced.NSamples, 0)
	}
	if reduced.Target != full.Target {
		return nil, errors.NewValueError(op, "models predict different targets: "+reduced.Target+" vs "+full.Target)
	}
	if reduced.targetSum != full.targetSum {
		return nil, errors.NewValueError(op, "models were fit on different records")
	}

	df1 := reduced.DFResidual - full.DFResidual
	df2 := full.DFResidual
	res := &ANOVA{
		Reduced:    append([]string(nil), reduced.Predictors...),
		Full:       append([]string(nil), full.Predictors...),
		RSSReduced: reduced.RSS,
		RSSFull:    full.RSS,
		DF1:        df1,
		DF2:        df2,
	}

	num := (reduced.RSS - full.RSS) / float64(df1)
	den := full.RSS / float64(df2)
	switch {
	case den > 0:
		res.F = math.Max(0, num/den)
		res.PValue = distuv.F{D1: float64(df1), D2: float64(df2)}.Survival(res.F)
	case num > 0:
		// the full model interpolates the data
		res.F = math.Inf(1)
		res.PValue = 0
	default:
		res.F = 0
		res.PValue = 1
	}

	log.GetLoggerWithName("linear.anova").Debug("nested models compared",
		log.OperationKey, log.OperationCompare,
		"f", res.F,
		"p_value", res.PValue,
		"df1", df1,
		"df2", df2,
	)
	return res, nil
}

func strictSubset(small, large []string) bool {
	if len(small) >= len(large) {
		return false
	}
	set := make(map[string]bool, len(large))
	for _, name := range large {
		set[name] = true
	}
	for _, name := range small {
		if !set[name] {
			return false
		}
	}
	return true
}

func sortedCopy(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
