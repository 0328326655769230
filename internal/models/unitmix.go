// internal/models/unitmix.go
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// FactSource tells which pass produced a unit fact.
type FactSource string

const (
	SourceStrict   FactSource = "STRICT"
	SourceInferred FactSource = "INFERRED"
	SourceLLM      FactSource = "LLM"
	SourceDefault  FactSource = "DEFAULT"
)

// MixSource is the provenance tag of a whole resolution.
type MixSource string

const (
	MixStrict              MixSource = "STRICT"
	MixInferred            MixSource = "INFERRED"
	MixInferredReconciled  MixSource = "INFERRED_MLS_RECONCILED"
	MixKnownComplete       MixSource = "KNOWN_COMPLETE"
	MixDefaultPartial      MixSource = "DEFAULT_PARTIAL"
	MixDefaultConservative MixSource = "DEFAULT_CONSERVATIVE"
)

// Diagnostic flags carried on a MixResolution.
const (
	FlagBedroomCountMismatch   = "BEDROOM_COUNT_MISMATCH"
	FlagHighAvgBedsPerUnit     = "HIGH_AVG_BEDS_PER_UNIT"
	FlagMLSReconciled          = "MLS_RECONCILED"
	FlagReviewRequired         = "REVIEW_REQUIRED"
	FlagLLMFallbackUsed        = "LLM_FALLBACK_USED"
	FlagLLMFallbackUnavailable = "LLM_FALLBACK_UNAVAILABLE"
	FlagUnderwritingAdjusted   = "UNDERWRITING_ADJUSTED"
)

// Assumption codes. The default-fill codes double as flags.
const (
	AssumptionPluralEachHave2BR     = "PLURAL_EACH_HAVE_2BR"
	AssumptionPluralSpacious2BR     = "PLURAL_SPACIOUS_2BR"
	AssumptionPluralAssume2BR       = "PLURAL_ASSUME_2BR"
	AssumptionSingularAssume1BR     = "SINGULAR_ASSUME_1BR"
	AssumptionMLSReconciled         = "MLS_RECONCILED"
	AssumptionDefaultEqualDist      = "DEFAULT_EQUAL_DIST"
	AssumptionDefaultStudioPattern  = "DEFAULT_STUDIO_PATTERN"
	AssumptionDefaultConservative   = "DEFAULT_CONSERVATIVE"
	AssumptionSingleUnitStatedTotal = "SINGLE_UNIT_STATED_TOTAL"
	AssumptionLLMExtracted          = "LLM_EXTRACTED"
	AssumptionUnderwritingCapped    = "UNDERWRITING_CAPPED"
)

const (
	MinUnitBeds    = 0
	MaxUnitBeds    = 4
	MaxCitationLen = 200
	MaxStatedTotal = 20
)

// UnitType is one physical unit's derived facts.
type UnitType struct {
	UnitID         string     `json:"unit_id"`
	Beds           int        `json:"beds"`
	Label          string     `json:"label"`
	Confidence     Confidence `json:"confidence"`
	Source         FactSource `json:"source"`
	AssumptionCode string     `json:"assumption_code,omitempty"`
	Citation       string     `json:"citation"`
}

// NewUnit builds a UnitType with its label derived from beds.
func NewUnit(unitID string, beds int, conf Confidence, src FactSource, code, citation string) UnitType {
	return UnitType{
		UnitID:         unitID,
		Beds:           beds,
		Label:          LabelForBeds(beds),
		Confidence:     conf,
		Source:         src,
		AssumptionCode: code,
		Citation:       citation,
	}
}

// WithBeds returns a copy with a new bed count and assumption code.
func (u UnitType) WithBeds(beds int, code string) UnitType {
	u.Beds = beds
	u.Label = LabelForBeds(beds)
	u.AssumptionCode = code
	return u
}

func LabelForBeds(beds int) string {
	if beds <= 0 {
		return "Studio"
	}
	return fmt.Sprintf("%dBR", beds)
}

func ValidBeds(beds int) bool {
	return beds >= MinUnitBeds && beds <= MaxUnitBeds
}

// UnitID renders the canonical id for a 1-based unit position.
func UnitID(position int) string {
	return "U" + strconv.Itoa(position)
}

// UnitPosition parses a canonical id back to its position. It returns 0 for
// anything that is not of the form U<n>.
func UnitPosition(unitID string) int {
	if !strings.HasPrefix(unitID, "U") {
		return 0
	}
	n, err := strconv.Atoi(unitID[1:])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// SortUnits orders units by position ("U2" before "U10"), then by id.
func SortUnits(units []UnitType) []UnitType {
	out := append([]UnitType(nil), units...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := UnitPosition(out[i].UnitID), UnitPosition(out[j].UnitID)
		if pi != pj {
			return pi < pj
		}
		return out[i].UnitID < out[j].UnitID
	})
	return out
}

func SumBeds(units []UnitType) int {
	total := 0
	for _, u := range units {
		total += u.Beds
	}
	return total
}

// MixResolution is the single authoritative answer for a listing.
type MixResolution struct {
	FinalMix       []UnitType `json:"final_mix"`
	Source         MixSource  `json:"source"`
	ReviewRequired bool       `json:"review_required"`
	Flags          []string   `json:"flags"`
}

// UnderwritingSummary records the outcome of the underwriting gate.
type UnderwritingSummary struct {
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
}

type ExtractionResult struct {
	Units                 int                 `json:"units"`
	TotalBeds             *int                `json:"totalBeds,omitempty"`
	UnitBreakdownStrict   []UnitType          `json:"unit_breakdown_strict"`
	UnitBreakdownInferred []UnitType          `json:"unit_breakdown_inferred"`
	UnitBreakdownLLM      []UnitType          `json:"unit_breakdown_llm"`
	MixResolution         MixResolution       `json:"mix_resolution"`
	Underwriting          UnderwritingSummary `json:"underwriting"`
}

// MergeFlags returns the sorted, de-duplicated union of flags.
func MergeFlags(flags []string, add ...string) []string {
	seen := make(map[string]struct{}, len(flags)+len(add))
	out := make([]string, 0, len(flags)+len(add))
	for _, f := range append(append([]string(nil), flags...), add...) {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// TruncateCitation cuts s to at most MaxCitationLen bytes without splitting a
// rune, so the result stays a literal prefix of s.
func TruncateCitation(s string) string {
	if len(s) <= MaxCitationLen {
		return s
	}
	cut := MaxCitationLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
