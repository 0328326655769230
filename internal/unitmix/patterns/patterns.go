// internal/unitmix/patterns/patterns.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"listing-unitmix/internal/models"
)

const (
	numberWords  = `one|two|three|four|five|six|seven|eight|nine|ten`
	ordinalWords = `first|second|third|fourth|fifth|sixth|seventh|eighth|ninth`
	listSep      = `(?:\s*,\s*(?:and\s+)?|\s+(?:and|&)\s+|\s*&\s*)`
	bedWord      = `(?:bed(?:room)?s?|br|bdrms?|bd)`
)

var (
	unitNumber = `(?:\d{1,2}|` + numberWords + `)`
	ordinal    = `(?:\d{1,2}(?:st|nd|rd|th)|` + ordinalWords + `)`

	labelRef   = `\b(?:units?|apts?|apartments?)\.?\s*#?\s*` + unitNumber + `(?:` + listSep + `#?` + unitNumber + `)*\b`
	ordinalRef = `\b` + ordinal + `(?:` + listSep + ordinal + `)*\s+(?:floor|unit|level|apartment|apt)s?\b`

	unitRefRe   = regexp.MustCompile(`(?i)` + labelRef + `|` + ordinalRef)
	refTokenRe  = regexp.MustCompile(`(?i)\b(?:\d{1,2}(?:st|nd|rd|th)?|` + numberWords + `|` + ordinalWords + `)\b`)
	canonicalRe = regexp.MustCompile(`^[Uu](\d{1,3})$`)
	bedAfterRe  = regexp.MustCompile(`(?i)^[\s-]*(?:` + bedWord + `|studio)\b`)

	bedCountRe = regexp.MustCompile(`(?i)\b(\d{1,2}|` + numberWords + `)[\s-]*` + bedWord + `\b`)
	studioRe   = regexp.MustCompile(`(?i)\b(?:studio|efficiency)\b`)

	totalBedsRe = regexp.MustCompile(`(?i)` +
		`\b(\d{1,2}|` + numberWords + `)\s*` + bedWord + `\s+total\b` +
		`|\btotal\s+of\s+(\d{1,2}|` + numberWords + `)[\s-]*` + bedWord + `\b` +
		`|\b(\d{1,2}|` + numberWords + `)\s+total\s+` + bedWord + `\b` +
		`|\btotal\s+` + bedWord + `\s*[:=-]?\s*(\d{1,2}|` + numberWords + `)\b`)

	plexRe       = regexp.MustCompile(`(?i)\b(duplex|triplex|fourplex|quadplex|4plex|3plex)\b`)
	nFamilyRe    = regexp.MustCompile(`(?i)\b(\d{1,2}|` + numberWords + `)[\s-]*(?:family|units?)\b`)
	singleFamRe  = regexp.MustCompile(`(?i)\bsingle[\s-]*family\b`)
	paragraphRe  = regexp.MustCompile(`\n\s*\n`)
	numberValues = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
		"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9,
	}
	plexUnits = map[string]int{
		"duplex": 2, "triplex": 3, "3plex": 3, "fourplex": 4, "quadplex": 4, "4plex": 4,
	}
)

// MaxUnitsFromVocabulary bounds unit counts read from "<N> family" phrasing.
const MaxUnitsFromVocabulary = 20

// UnitRef is one unit-scoped reference found in text. A reference may name
// several units ("1st and 2nd unit").
type UnitRef struct {
	UnitIDs []string
	Start   int
	End     int
}

// Text returns the literal reference span.
func (r UnitRef) Text(text string) string {
	return text[r.Start:r.End]
}

// Match is a literal span of text with an optional parsed value.
type Match struct {
	Kind  string
	Value int
	Start int
	End   int
}

const (
	KindStudio = "studio"
	KindBeds   = "beds"
)

// ParseNumber reads a digit string, a number word or an ordinal.
func ParseNumber(token string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.TrimLeft(t, "#")
	if n, ok := numberValues[t]; ok {
		return n, true
	}
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSuffix(t, suffix)
			break
		}
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeUnitRef maps a reference such as "1st", "first", "unit one",
// "unit #1" or "U1" to its canonical id.
func NormalizeUnitRef(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if m := canonicalRe.FindStringSubmatch(ref); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n < 1 {
			return "", false
		}
		return models.UnitID(n), true
	}
	tok := refTokenRe.FindString(ref)
	if tok == "" {
		return "", false
	}
	n, ok := ParseNumber(tok)
	if !ok || n < 1 {
		return "", false
	}
	return models.UnitID(n), true
}

// FindUnitRefs returns every unit-scoped reference in text, in order.
// List members directly followed by a bed word ("unit 1, 2 bedrooms") are
// not treated as unit numbers.
func FindUnitRefs(text string) []UnitRef {
	locs := unitRefRe.FindAllStringIndex(text, -1)
	refs := make([]UnitRef, 0, len(locs))
	for _, loc := range locs {
		span := text[loc[0]:loc[1]]
		toks := refTokenRe.FindAllStringIndex(span, -1)
		var ids []string
		end := loc[0]
		for i, tok := range toks {
			if i > 0 && bedAfterRe.MatchString(text[loc[0]+tok[1]:]) {
				break
			}
			n, ok := ParseNumber(span[tok[0]:tok[1]])
			if !ok || n < 1 {
				continue
			}
			ids = appendUnique(ids, models.UnitID(n))
			end = loc[0] + tok[1]
		}
		if len(ids) == 0 {
			continue
		}
		// ordinal refs end with the unit noun, keep it in the span
		if last := toks[len(toks)-1]; loc[0]+last[1] == end {
			end = loc[1]
		}
		refs = append(refs, UnitRef{UnitIDs: ids, Start: loc[0], End: end})
	}
	return refs
}

// ScopeWindow returns the [start,end) offsets of the text governed by
// refs[i]: from the end of the reference up to the next reference, capped at
// maxLen bytes, a blank line, and optionally the first sentence terminator.
func ScopeWindow(text string, refs []UnitRef, i, maxLen int, stopAtSentence bool) (int, int) {
	start := refs[i].End
	end := len(text)
	if i+1 < len(refs) && refs[i+1].Start < end {
		end = refs[i+1].Start
	}
	if maxLen > 0 && start+maxLen < end {
		end = start + maxLen
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
	}
	if loc := paragraphRe.FindStringIndex(text[start:end]); loc != nil {
		end = start + loc[0]
	}
	if stopAtSentence {
		if cut := sentenceEnd(text[start:end]); cut >= 0 {
			end = start + cut
		}
	}
	return start, end
}

// sentenceEnd finds the first terminator in s. A period counts only when it
// is followed by whitespace or ends s, so "1.5 baths" stays whole.
func sentenceEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '!', '?', ';', '\n':
			return i
		case '.':
			if i+1 == len(s) {
				return i
			}
			r, _ := utf8.DecodeRuneInString(s[i+1:])
			if unicode.IsSpace(r) {
				return i
			}
		}
	}
	return -1
}

// FirstUnitFact returns the earliest studio or bed-count mention in s.
func FirstUnitFact(s string) (Match, bool) {
	var best Match
	found := false
	if loc := studioRe.FindStringIndex(s); loc != nil {
		best = Match{Kind: KindStudio, Value: 0, Start: loc[0], End: loc[1]}
		found = true
	}
	if m := bedCountRe.FindStringSubmatchIndex(s); m != nil && (!found || m[0] < best.Start) {
		n, ok := ParseNumber(s[m[2]:m[3]])
		if ok {
			best = Match{Kind: KindBeds, Value: n, Start: m[0], End: m[1]}
			found = true
		}
	}
	return best, found
}

// FindStudio returns the first studio/efficiency mention in s.
func FindStudio(s string) (Match, bool) {
	loc := studioRe.FindStringIndex(s)
	if loc == nil {
		return Match{}, false
	}
	return Match{Kind: KindStudio, Start: loc[0], End: loc[1]}, true
}

// HasStudioCue reports whether s mentions a studio anywhere.
func HasStudioCue(s string) bool {
	return studioRe.MatchString(s)
}

// HasExplicitBedCount reports whether s states a digit or word bed count.
func HasExplicitBedCount(s string) bool {
	return bedCountRe.MatchString(s)
}

// FindTotalBedrooms returns every property-level total statement, in order.
func FindTotalBedrooms(text string) []Match {
	all := totalBedsRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]Match, 0, len(all))
	for _, m := range all {
		for g := 1; g <= 4; g++ {
			if m[2*g] < 0 {
				continue
			}
			if n, ok := ParseNumber(text[m[2*g]:m[2*g+1]]); ok {
				out = append(out, Match{Kind: KindBeds, Value: n, Start: m[0], End: m[1]})
			}
			break
		}
	}
	return out
}

// UnitCountFromType maps property type/style vocabulary to a unit count.
// A single-family marker wins over any counted mention.
func UnitCountFromType(s string) (int, bool) {
	if singleFamRe.MatchString(s) {
		return 1, true
	}
	if m := plexRe.FindStringSubmatch(s); m != nil {
		return plexUnits[strings.ToLower(m[1])], true
	}
	for _, m := range nFamilyRe.FindAllStringSubmatch(s, -1) {
		if n, ok := ParseNumber(m[1]); ok && n >= 1 && n <= MaxUnitsFromVocabulary {
			return n, true
		}
	}
	return 0, false
}

// BoundText truncates s to at most maxChars characters.
func BoundText(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
