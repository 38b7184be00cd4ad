package model

import (
	"sync"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// Source records how the current model was obtained.
type Source string

const (
	// SourceNone は未学習
	SourceNone Source = ""
	// SourceFit は Fit による学習済みモデル
	SourceFit Source = "fit"
	// SourceLoad は Load による復元済みモデル
	SourceLoad Source = "load"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// It replaces the BaseEstimator embedding pattern with composition.
type StateManager struct {
	mu sync.RWMutex

	fitted    bool
	source    Source
	nFeatures int
	nSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted or loaded.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// MarkFitted records a freshly trained model. nSamples is 0 for loaded models.
func (s *StateManager) MarkFitted(src Source, nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.source = src
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.source = SourceNone
	s.nFeatures = 0
	s.nSamples = 0
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError naming modelName and method when
// no model is installed.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return perrors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState represents the complete state of a model.
// This can be used for logging and debugging.
type ModelState struct {
	Fitted    bool   `json:"fitted" yaml:"fitted"`
	Source    Source `json:"source,omitempty" yaml:"source,omitempty"`
	NFeatures int    `json:"n_features,omitempty" yaml:"n_features,omitempty"`
	NSamples  int    `json:"n_samples,omitempty" yaml:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:    s.fitted,
		Source:    s.source,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
