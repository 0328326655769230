// internal/unitmix/strict/extractor_test.go
package strict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"listing-unitmix/internal/common/logger"
	"listing-unitmix/internal/models"
)

func newTestExtractor(t *testing.T) *Extractor {
	return New(DefaultConfig(), logger.NewTestLogger(t))
}

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		hints     Hints
		expected  []int
		ids       []string
		citations []string
	}{
		{
			name:      "explicit counts per unit",
			text:      "unit 1 has 2 bedrooms, unit 2 has 2 bedrooms",
			hints:     Hints{ExpectedUnits: 2},
			expected:  []int{2, 2},
			ids:       []string{"U1", "U2"},
			citations: []string{"unit 1 has 2 bedrooms", "unit 2 has 2 bedrooms"},
		},
		{
			name:      "studio and efficiency",
			text:      "Unit 1 is a studio. Unit 2 is an efficiency.",
			expected:  []int{0, 0},
			ids:       []string{"U1", "U2"},
			citations: []string{"Unit 1 is a studio", "Unit 2 is an efficiency"},
		},
		{
			name:      "ordinal list shares the fact",
			text:      "1st and 2nd floor have 3 bedrooms each.",
			expected:  []int{3, 3},
			ids:       []string{"U1", "U2"},
			citations: []string{"1st and 2nd floor have 3 bedrooms", "1st and 2nd floor have 3 bedrooms"},
		},
		{
			name:     "count-free mention is not strict",
			text:     "1st and 2nd unit features spacious bedrooms",
			expected: []int{},
		},
		{
			name:     "fact beyond the sentence is not strict",
			text:     "Unit 1 was renovated. It has 2 bedrooms.",
			expected: []int{},
		},
		{
			name:      "first occurrence wins",
			text:      "Unit 1 has 1 bedroom. Later: unit 1 has 3 bedrooms.",
			expected:  []int{1},
			ids:       []string{"U1"},
			citations: []string{"Unit 1 has 1 bedroom"},
		},
		{
			name:      "units beyond the expected count are dropped",
			text:      "Unit 1 has 2 bedrooms. Unit 3 has 1 bedroom.",
			hints:     Hints{ExpectedUnits: 2},
			expected:  []int{2},
			ids:       []string{"U1"},
			citations: []string{"Unit 1 has 2 bedrooms"},
		},
		{
			name:     "no unit language",
			text:     "Lovely colonial with 3 bedrooms and a yard.",
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units := newTestExtractor(t).Extract(tt.text, tt.hints)
			require.Len(t, units, len(tt.expected))
			for i, u := range units {
				assert.Equal(t, tt.expected[i], u.Beds)
				assert.Equal(t, tt.ids[i], u.UnitID)
				assert.Equal(t, tt.citations[i], u.Citation)
				assert.Equal(t, models.ConfidenceHigh, u.Confidence)
				assert.Equal(t, models.SourceStrict, u.Source)
				assert.Equal(t, models.LabelForBeds(u.Beds), u.Label)
				assert.True(t, strings.Contains(tt.text, u.Citation))
			}
		})
	}
}

func TestExtractor_Extract_OutOfRangeDiscardedWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ext := New(DefaultConfig(), logger.NewZapAdapter(zap.New(core)))

	units := ext.Extract("Unit 1 has 7 bedrooms. Unit 2 has 2 bedrooms.", Hints{ExpectedUnits: 2})

	require.Len(t, units, 1)
	assert.Equal(t, "U2", units[0].UnitID)
	assert.Equal(t, 2, units[0].Beds)

	warnings := logs.FilterMessage("discarding out-of-range bedroom count").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(7), warnings[0].ContextMap()["beds"])
}

func TestExtractor_Extract_BoundsText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTextLength = 30
	ext := New(cfg, logger.NewNoOpLogger())

	text := "Unit 1 has 2 bedrooms. " + strings.Repeat("filler ", 10) + "Unit 2 has 1 bedroom."
	units := ext.Extract(text, Hints{})

	require.Len(t, units, 1)
	assert.Equal(t, "U1", units[0].UnitID)
}

func TestExtractor_Extract_Deterministic(t *testing.T) {
	ext := newTestExtractor(t)
	text := "Unit 2 has 1 bedroom. Unit 1 is a studio. 3rd floor has 2 bedrooms."

	first := ext.Extract(text, Hints{ExpectedUnits: 3})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ext.Extract(text, Hints{ExpectedUnits: 3}))
	}
}

func TestExtractor_TotalBedrooms(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected *int
	}{
		{"bedrooms total", "Duplex, 5 bedrooms total", models.IntPtr(5)},
		{"total of", "A total of 4 bedrooms", models.IntPtr(4)},
		{"label form", "Total bedrooms: 6", models.IntPtr(6)},
		{"out of range ignored", "25 bedrooms total", nil},
		{"skips out of range to next", "25 bedrooms total, or 6 total bedrooms", models.IntPtr(6)},
		{"per-unit counts are not totals", "unit 1 has 2 bedrooms", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestExtractor(t).TotalBedrooms(tt.text)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestUnitCountFromType(t *testing.T) {
	n, ok := UnitCountFromType("Triplex")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = UnitCountFromType("Ranch")
	assert.False(t, ok)
}
