// Package gbm implements squared-error gradient boosting over depth-limited
// regression trees, together with the k-fold cross-validation tuner that
// selects the number of boosting rounds.
//
// Trees are stored as flat node arrays addressed by index. Training is exact
// greedy: every distinct feature value is a split candidate, the gain of a
// split is computed from gradient and hessian sums with L2 regularisation, and
// leaf values are -G/(H+lambda). Predictions are the mean of the training
// target plus the learning-rate-scaled output of every tree.
//
// Basic usage:
//
//	params := gbm.DefaultTrainingParams()
//	cv, err := gbm.Tune(ctx, train, gbm.TuneParams{NFolds: 10, MaxRounds: 100, Patience: 10, Training: params})
//	params.NumRounds = cv.BestRound
//	model, err := gbm.Train(train, params)
//	pred, err := model.Predict(test)
package gbm
