// Standard attribute keys for pipeline logging. Keys are hierarchical
// ("model.name", "data.samples") so log output can be filtered by prefix.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "LinearModel", "GBMRegressor".
	ModelNameKey = "model.name"

	// OperationKey names the operation: "fit", "predict", "transform", "tune", "split".
	OperationKey = "ml.operation"

	// ComponentKey names the logger's component. Set by GetLoggerWithName.
	ComponentKey = "component"

	// PhaseKey indicates the lifecycle phase.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	FoldsKey    = "data.folds"
)

// Performance and training progress.
const (
	DurationMsKey = "perf.duration_ms"
	LossKey       = "metrics.loss"
	RMSEKey       = "metrics.rmse"
	R2ScoreKey    = "metrics.r2_score"
	IterationKey  = "training.iteration"
)

// Hyperparameters.
const (
	LearningRateKey = "hyperparams.learning_rate"
	MaxDepthKey     = "hyperparams.max_depth"
	RandomSeedKey   = "config.random_seed"
)

// Error context.
const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationTune      = "tune"
	OperationSplit     = "split"
	OperationCompare   = "compare"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
)
