package linear

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithPredictors restricts the fit to the named predictor columns.
// By default every non-target column is used.
func WithPredictors(names ...string) Option {
	return func(lr *LinearRegression) {
		lr.requested = append([]string{}, names...)
	}
}

// WithRankTolerance sets the tolerance, relative to the norm of the design
// column and scaled by max(n, p), below which a diagonal element of R is zero.
func WithRankTolerance(tol float64) Option {
	return func(lr *LinearRegression) {
		lr.rankTol = tol
	}
}
