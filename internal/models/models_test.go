package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeValid(t *testing.T) {
	assert.True(t, ModeSimple.Valid())
	assert.True(t, ModeDebate.Valid())
	assert.False(t, Mode("turbo").Valid())
	assert.False(t, Mode("").Valid())
}

func TestIsDebateArtifact(t *testing.T) {
	assert.True(t, MessageTypeExpert.IsDebateArtifact())
	assert.True(t, MessageTypeCritic.IsDebateArtifact())
	assert.True(t, MessageTypeModSynth.IsDebateArtifact())
	assert.False(t, MessageTypeModInit.IsDebateArtifact())
	assert.False(t, MessageTypeUser.IsDebateArtifact())
	assert.False(t, MessageTypeFinal.IsDebateArtifact())
}

func TestClampLimits(t *testing.T) {
	tests := []struct {
		name          string
		in            DebateState
		wantIter      int
		wantThreshold float64
	}{
		{"below minimums", DebateState{MaxIterations: 0, ScoreThreshold: 10}, 1, 50},
		{"above maximums", DebateState{MaxIterations: 50, ScoreThreshold: 150}, 10, 100},
		{"in range", DebateState{MaxIterations: 3, ScoreThreshold: 80}, 3, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.ClampLimits()
			assert.Equal(t, tt.wantIter, tt.in.MaxIterations)
			assert.InDelta(t, tt.wantThreshold, tt.in.ScoreThreshold, 1e-9)
		})
	}
}
