// Package log defines standard attribute keys for linearsvm operations.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so log pipelines can filter on them.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "LinearSVM".
	ModelNameKey = "model.name"

	// SolverKey names the liblinear solver kind, e.g. "L2R_L2LOSS_SVC_DUAL".
	SolverKey = "model.solver"

	// ClassesKey records the number of classes seen during training.
	ClassesKey = "model.classes"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// DataSizeKey indicates the size of a payload in bytes.
	DataSizeKey = "data.size_bytes"
)

// Performance and Training
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the iteration count of an iterative solver.
	IterationKey = "training.iteration"

	// RegularizationKey records the regularization constant C.
	RegularizationKey = "hyperparams.c"

	// ToleranceKey records the stopping tolerance.
	ToleranceKey = "hyperparams.tolerance"
)

// Persistence
const (
	// HandleKey identifies a stored model resource.
	HandleKey = "store.handle"

	// BackendKey names the store backend ("file", "sqlite", "cached").
	BackendKey = "store.backend"

	// CompressionKey names the envelope compression ("none", "zstd", "lz4").
	CompressionKey = "store.compression"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard values
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSave    = "save"
	OperationLoad    = "load"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorNotTrained      = "NOT_TRAINED"
	ErrorInvalidInput    = "INVALID_INPUT"
	ErrorTrainingFailure = "TRAINING_FAILURE"
	ErrorPersistence     = "PERSISTENCE_FAILURE"
)
