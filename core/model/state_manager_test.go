package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("LinearSVM", "Predict")
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrNotTrained))

	s.MarkFitted(SourceFit, 2, 4)
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("LinearSVM", "Predict"))
	nf, ns := s.GetDimensions()
	assert.Equal(t, 2, nf)
	assert.Equal(t, 4, ns)
	assert.Equal(t, ModelState{Fitted: true, Source: SourceFit, NFeatures: 2, NSamples: 4}, s.GetState())

	s.MarkFitted(SourceLoad, 3, 0)
	assert.Equal(t, SourceLoad, s.GetState().Source)

	s.Reset()
	assert.Equal(t, ModelState{}, s.GetState())
}

func TestStateManagerConcurrentReads(t *testing.T) {
	s := NewStateManager()
	s.MarkFitted(SourceFit, 1, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, s.IsFitted())
			}
		}()
	}
	wg.Wait()
}
