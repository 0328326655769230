// internal/unitmix/patterns/patterns_test.go
package patterns

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnitRef(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"1st", "U1", true},
		{"first", "U1", true},
		{"unit 1", "U1", true},
		{"unit one", "U1", true},
		{"Unit #1", "U1", true},
		{"U1", "U1", true},
		{"u3", "U3", true},
		{"3rd floor", "U3", true},
		{"Apartment two", "U2", true},
		{"unit 0", "", false},
		{"upstairs", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeUnitRef(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFindUnitRefs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected [][]string
		spans    []string
	}{
		{
			name:     "labelled units",
			text:     "unit 1 has 2 bedrooms, unit 2 has 2 bedrooms",
			expected: [][]string{{"U1"}, {"U2"}},
			spans:    []string{"unit 1", "unit 2"},
		},
		{
			name:     "ordinal list",
			text:     "1st and 2nd unit features spacious bedrooms... the 3rd unit is a spacious studio",
			expected: [][]string{{"U1", "U2"}, {"U3"}},
			spans:    []string{"1st and 2nd unit", "3rd unit"},
		},
		{
			name:     "number words and hash",
			text:     "Unit #1 is a studio. Apartment two offers a bedroom.",
			expected: [][]string{{"U1"}, {"U2"}},
			spans:    []string{"Unit #1", "Apartment two"},
		},
		{
			name:     "list of unit numbers",
			text:     "Units 1 and 2 each have bedrooms",
			expected: [][]string{{"U1", "U2"}},
			spans:    []string{"Units 1 and 2"},
		},
		{
			name:     "list member followed by bed word",
			text:     "unit 1, 2 bedrooms and a deck",
			expected: [][]string{{"U1"}},
			spans:    []string{"unit 1"},
		},
		{
			name:     "floors",
			text:     "First floor: studio. Second floor: 2 bedrooms.",
			expected: [][]string{{"U1"}, {"U2"}},
			spans:    []string{"First floor", "Second floor"},
		},
		{
			name:     "no unit language",
			text:     "Charming home with a big yard and 3 bedrooms.",
			expected: [][]string{},
			spans:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := FindUnitRefs(tt.text)
			require.Len(t, refs, len(tt.expected))
			for i, ref := range refs {
				assert.Equal(t, tt.expected[i], ref.UnitIDs)
				assert.Equal(t, tt.spans[i], ref.Text(tt.text))
			}
		})
	}
}

func TestFindUnitRefs_FreshResultsPerCall(t *testing.T) {
	text := "unit 1 has 2 bedrooms, unit 2 is a studio"

	first := FindUnitRefs(text)
	second := FindUnitRefs(text)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	first[0].UnitIDs[0] = "mutated"
	third := FindUnitRefs(text)
	assert.Equal(t, "U1", third[0].UnitIDs[0])
}

func TestScopeWindow(t *testing.T) {
	text := "Unit 1 offers 1.5 baths and 2 bedrooms. Laundry in basement. Unit 2 is a studio"
	refs := FindUnitRefs(text)
	require.Len(t, refs, 2)

	t.Run("stops at sentence end, not at decimals", func(t *testing.T) {
		start, end := ScopeWindow(text, refs, 0, 200, true)
		assert.Equal(t, " offers 1.5 baths and 2 bedrooms", text[start:end])
	})

	t.Run("runs to next reference without sentence stop", func(t *testing.T) {
		start, end := ScopeWindow(text, refs, 0, 200, false)
		assert.Equal(t, " offers 1.5 baths and 2 bedrooms. Laundry in basement. ", text[start:end])
	})

	t.Run("capped by length", func(t *testing.T) {
		start, end := ScopeWindow(text, refs, 0, 10, false)
		assert.Equal(t, 10, end-start)
	})

	t.Run("last reference runs to end of text", func(t *testing.T) {
		start, end := ScopeWindow(text, refs, 1, 200, true)
		assert.Equal(t, " is a studio", text[start:end])
	})

	t.Run("blank line ends the window", func(t *testing.T) {
		para := "Unit 1 has bedrooms\n\nThe garage fits two cars"
		prefs := FindUnitRefs(para)
		require.Len(t, prefs, 1)
		start, end := ScopeWindow(para, prefs, 0, 200, false)
		assert.Equal(t, " has bedrooms", para[start:end])
	})
}

func TestFirstUnitFact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		found   bool
		kind    string
		value   int
		literal string
	}{
		{"digit bedrooms", " has 2 bedrooms", true, KindBeds, 2, "2 bedrooms"},
		{"word count", " offers three bedrooms", true, KindBeds, 3, "three bedrooms"},
		{"abbreviation", ": 2BR/1BA", true, KindBeds, 2, "2BR"},
		{"hyphenated", " is a 1-bedroom", true, KindBeds, 1, "1-bedroom"},
		{"studio", " is a spacious studio", true, KindStudio, 0, "studio"},
		{"efficiency", " is an efficiency", true, KindStudio, 0, "efficiency"},
		{"earliest wins", " is a studio next to 2 bedrooms", true, KindStudio, 0, "studio"},
		{"out of range is still reported", " has 7 bedrooms", true, KindBeds, 7, "7 bedrooms"},
		{"no count", " features spacious bedrooms", false, "", 0, ""},
		{"baths are not beds", " has 1.5 baths", false, "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := FirstUnitFact(tt.input)
			assert.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.literal, tt.input[m.Start:m.End])
		})
	}
}

func TestFindTotalBedrooms(t *testing.T) {
	tests := []struct {
		text     string
		expected []int
	}{
		{"Duplex with 5 bedrooms total.", []int{5}},
		{"A total of six bedrooms across both units", []int{6}},
		{"Offers 4 total bedrooms", []int{4}},
		{"Total bedrooms: 3", []int{3}},
		{"Unit 1 has 2 bedrooms", []int{}},
		{"5 bedrooms total and later 25 bedrooms total", []int{5, 25}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			matches := FindTotalBedrooms(tt.text)
			values := make([]int, 0, len(matches))
			for _, m := range matches {
				values = append(values, m.Value)
			}
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestUnitCountFromType(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"Duplex", 2, true},
		{"Triplex", 3, true},
		{"Fourplex", 4, true},
		{"Quadplex", 4, true},
		{"3 Family", 3, true},
		{"Two-Family", 2, true},
		{"Multi 4-unit building", 4, true},
		{"Building with 6 units", 6, true},
		{"Single Family Residence", 1, true},
		{"Single family home on a street of 2 family houses", 1, true},
		{"Colonial", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := UnitCountFromType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBoundText(t *testing.T) {
	assert.Equal(t, "abc", BoundText("abc", 10))
	assert.Equal(t, "ab", BoundText("abc", 2))
	assert.Equal(t, "héé", BoundText("hééllo", 3))

	long := strings.Repeat("x", 12000)
	assert.Len(t, BoundText(long, 10000), 10000)
}

func TestHasExplicitBedCount(t *testing.T) {
	assert.True(t, HasExplicitBedCount("has 7 bedrooms"))
	assert.True(t, HasExplicitBedCount("two bedroom unit"))
	assert.False(t, HasExplicitBedCount("has bedrooms"))
	assert.True(t, HasStudioCue("cozy Studio upstairs"))
	assert.False(t, HasStudioCue("studious tenant"))
}
