package report

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/YuminosukeSato/regselect/pipeline"
	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// number encodes non-finite values (infinite t statistics, F of an
// interpolating model) as null, which plain float64 fields cannot do.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type jsonReport struct {
	Split       jsonSplit                   `json:"split"`
	Evaluations []pipeline.EvaluationReport `json:"evaluations"`
	Linear      *jsonLinear                 `json:"linear,omitempty"`
	Boosted     *jsonBoosted                `json:"boosted,omitempty"`
}

type jsonSplit struct {
	Fraction float64 `json:"fraction"`
	Seed     uint64  `json:"seed"`
	Train    int     `json:"train_size"`
	Test     int     `json:"test_size"`
}

type jsonCoefficient struct {
	Name     string `json:"name"`
	Estimate number `json:"estimate"`
	StdError number `json:"std_error"`
	TStat    number `json:"t_stat"`
	PValue   number `json:"p_value"`
}

type jsonScore struct {
	Feature string `json:"feature"`
	Score   number `json:"score"`
}

type jsonANOVA struct {
	Reduced    []string `json:"reduced"`
	Full       []string `json:"full"`
	RSSReduced number   `json:"rss_reduced"`
	RSSFull    number   `json:"rss_full"`
	DF1        int      `json:"df1"`
	DF2        int      `json:"df2"`
	F          number   `json:"f"`
	PValue     number   `json:"p_value"`
}

type jsonLinear struct {
	Coefficients []jsonCoefficient `json:"coefficients"`
	RSquared     number            `json:"r_squared"`
	AdjRSquared  number            `json:"adj_r_squared"`
	Sigma        number            `json:"sigma"`
	Ranking      []jsonScore       `json:"ranking"`
	Selected     []string          `json:"selected"`
	ANOVA        *jsonANOVA        `json:"anova,omitempty"`
}

type jsonRound struct {
	Round         int    `json:"round"`
	TrainRMSEMean number `json:"train_rmse_mean"`
	TrainRMSEStd  number `json:"train_rmse_std"`
	TestRMSEMean  number `json:"test_rmse_mean"`
	TestRMSEStd   number `json:"test_rmse_std"`
}

type jsonBoosted struct {
	NFolds       int         `json:"n_folds"`
	BestRound    int         `json:"best_round"`
	BestScore    number      `json:"best_score"`
	StoppedEarly bool        `json:"stopped_early"`
	Rounds       []jsonRound `json:"rounds"`
	Importance   []jsonScore `json:"importance"`
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep *pipeline.Report) error {
	if rep == nil {
		return errors.NewValueError("report.WriteJSON", "nil report")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(rep)); err != nil {
		return errors.Wrap(err, "report.WriteJSON")
	}
	return nil
}

func toJSON(rep *pipeline.Report) jsonReport {
	out := jsonReport{
		Split: jsonSplit{
			Fraction: rep.Split.Fraction,
			Seed:     rep.Split.Seed,
			Train:    len(rep.Split.Train),
			Test:     len(rep.Split.Test),
		},
		Evaluations: rep.Evaluations,
	}
	if out.Evaluations == nil {
		out.Evaluations = []pipeline.EvaluationReport{}
	}

	if lr := rep.Linear; lr != nil && lr.Full != nil {
		jl := &jsonLinear{
			RSquared:    number(lr.Full.RSquared),
			AdjRSquared: number(lr.Full.AdjRSquared),
			Sigma:       number(lr.Full.Sigma),
			Selected:    append([]string{}, lr.Selected...),
		}
		for _, c := range lr.Full.Coefficients {
			jl.Coefficients = append(jl.Coefficients, jsonCoefficient{
				Name:     c.Name,
				Estimate: number(c.Estimate),
				StdError: number(c.StdError),
				TStat:    number(c.TStat),
				PValue:   number(c.PValue),
			})
		}
		for _, imp := range lr.Ranking {
			jl.Ranking = append(jl.Ranking, jsonScore{Feature: imp.Feature, Score: number(imp.Score)})
		}
		if a := lr.ANOVA; a != nil {
			jl.ANOVA = &jsonANOVA{
				Reduced:    append([]string{}, a.Reduced...),
				Full:       append([]string{}, a.Full...),
				RSSReduced: number(a.RSSReduced),
				RSSFull:    number(a.RSSFull),
				DF1:        a.DF1,
				DF2:        a.DF2,
				F:          number(a.F),
				PValue:     number(a.PValue),
			}
		}
		out.Linear = jl
	}

	if b := rep.Boosted; b != nil && b.CV != nil {
		jb := &jsonBoosted{
			NFolds:       b.CV.NFolds,
			BestRound:    b.CV.BestRound,
			BestScore:    number(b.CV.BestScore),
			StoppedEarly: b.CV.StoppedEarly,
		}
		for _, r := range b.CV.Rounds {
			jb.Rounds = append(jb.Rounds, jsonRound{
				Round:         r.Round,
				TrainRMSEMean: number(r.TrainRMSEMean),
				TrainRMSEStd:  number(r.TrainRMSEStd),
				TestRMSEMean:  number(r.TestRMSEMean),
				TestRMSEStd:   number(r.TestRMSEStd),
			})
		}
		for _, s := range b.Importance {
			jb.Importance = append(jb.Importance, jsonScore{Feature: s.Feature, Score: number(s.Score)})
		}
		out.Boosted = jb
	}
	return out
}
