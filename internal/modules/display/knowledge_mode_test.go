package display

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		level      KnowledgeLevel
		maxETFs    int
		maxTwo     int
		maxThree   int
		weights    bool
		overlap    bool
		breakdowns bool
	}{
		{LevelLow, 3, 1, 1, false, false, false},
		{LevelMedium, 5, 5, 5, true, true, false},
		{LevelHigh, 10, 10, 10, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			mode, err := Lookup(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.maxETFs, mode.MaxETFs)
			assert.Equal(t, tt.maxTwo, mode.MaxTwoBaskets)
			assert.Equal(t, tt.maxThree, mode.MaxThreeBaskets)
			assert.Equal(t, tt.weights, mode.ShowWeights)
			assert.Equal(t, tt.overlap, mode.ShowOverlap)
			assert.Equal(t, tt.breakdowns, mode.ShowBreakdowns)
			assert.Equal(t, "grid", mode.Layout)
		})
	}

	_, err := Lookup("expert")
	assert.ErrorIs(t, err, ErrUnknownKnowledgeLevel)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLevel, level)

	_, err = ParseLevel("guru")
	assert.ErrorIs(t, err, ErrUnknownKnowledgeLevel)
}

func TestAll(t *testing.T) {
	modes := All()
	require.Len(t, modes, 3)
	assert.Equal(t, LevelLow, modes[0].Level)
	assert.Equal(t, LevelHigh, modes[2].Level)
}

func TestModeManager(t *testing.T) {
	m := NewModeManager(LevelLow, zerolog.Nop())
	assert.Equal(t, LevelLow, m.GetLevel())
	assert.Equal(t, 3, m.GetMode().MaxETFs)

	require.NoError(t, m.SetLevelString("high"))
	assert.Equal(t, LevelHigh, m.GetLevel())
	require.NoError(t, m.SetLevel(LevelHigh))

	assert.ErrorIs(t, m.SetLevelString("wizard"), ErrUnknownKnowledgeLevel)
	assert.Equal(t, LevelHigh, m.GetLevel())

	mode, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, mode.Level)

	mode, err = m.Resolve(LevelMedium)
	require.NoError(t, err)
	assert.Equal(t, 5, mode.MaxETFs)
}

func TestModeManager_ResolveIgnoresCase(t *testing.T) {
	m := NewModeManager(LevelMedium, zerolog.Nop())

	mode, err := m.Resolve(" High ")
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, mode.Level)

	_, err = m.Resolve("expert")
	assert.ErrorIs(t, err, ErrUnknownKnowledgeLevel)
}

func TestNewModeManager_InvalidInitialFallsBack(t *testing.T) {
	m := NewModeManager("bogus", zerolog.Nop())
	assert.Equal(t, DefaultLevel, m.GetLevel())
}
