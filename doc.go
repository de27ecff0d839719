// Package regselect is a regression model-selection pipeline for tabular data
// with a continuous target.
//
// A run partitions the records into a stratified train/test split, fits an
// ordinary-least-squares model and prunes its predictors by |t|, compares
// the full and reduced models with a nested F test, chooses the number of
// boosting rounds for a gradient-boosted tree ensemble by k-fold
// cross-validation with early stopping, and reports the held-out RMSE of
// every model.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/regselect/core/dataset"
//	    "github.com/YuminosukeSato/regselect/pipeline"
//	    "github.com/YuminosukeSato/regselect/report"
//	)
//
//	func main() {
//	    ds, err := dataset.LoadCSV("housing.csv", "price")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    rep, err := pipeline.Run(context.Background(), ds, pipeline.DefaultOptions())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = report.WriteTable(os.Stdout, rep)
//	}
//
// # Packages
//
//   - core/dataset: Dataset, CSV loading and the stratified splitter
//   - core/model: fitted-state bookkeeping and estimator interfaces
//   - core/parallel: bounded parallel loops
//   - preprocessing: StandardScaler with a zero-variance policy
//   - linear: OLS fit, importance ranking and the nested F test
//   - sklearn/gbm: regression trees, gradient boosting and the CV tuner
//   - metrics: RMSE, MSE, MAE, R² and MAPE
//   - pipeline: the end-to-end run with concurrent model branches
//   - report: text tables, JSON and the learning-curve plot
//   - config: YAML configuration with REGSELECT_* overrides
//   - pkg/errors, pkg/log: structured errors and logging
//
// The regselect command wraps the pipeline:
//
//	regselect run --data housing.csv --target price --plot cv.png
//	regselect cv --data housing.csv --target price
//	regselect config --config regselect.yaml
package regselect
