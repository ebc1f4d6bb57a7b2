package pds

import (
	"strings"
	"unicode"
)

// headingPattern maps a literal heading phrase to a section label. Literals
// are matched case-insensitively as substrings; when several literals match
// the same fragment the longest one wins.
type headingPattern struct {
	literal string
	label   SectionLabel
}

// Known heading phrases, including the localized variants seen on Nordic
// market sheets. "Other"-labeled entries are the stop headings that close an
// open approvals/properties section.
var headingPatterns = []headingPattern{
	{"approvals & specifications", SectionApprovals},
	{"approvals and specifications", SectionApprovals},
	{"approvals", SectionApprovals},
	{"specifications", SectionApprovals},
	{"performance levels", SectionApprovals},
	{"performance", SectionApprovals},
	{"meets the requirements of", SectionApprovals},
	{"godkjenninger", SectionApprovals},
	{"spesifikasjoner", SectionApprovals},
	{"typical properties", SectionTypicalProperties},
	{"typical characteristics", SectionTypicalProperties},
	{"typical values", SectionTypicalProperties},
	{"typical data", SectionTypicalProperties},
	{"typiske egenskaper", SectionTypicalProperties},
	{"typiske data", SectionTypicalProperties},
	{"health and safety", SectionOther},
	{"health", SectionOther},
	{"safety", SectionOther},
	{"handling", SectionOther},
	{"storage", SectionOther},
	{"helse", SectionOther},
	{"lagring", SectionOther},
	{"håndtering", SectionOther},
}

// Heading candidates must be short lines; prose sentences that merely contain
// a heading phrase are not headings.
const maxHeadingWords = 6

// Segmenter partitions an ordered fragment sequence into labeled sections.
type Segmenter struct{}

// NewSegmenter creates a section segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Segment scans fragments in order and opens a new section at every
// recognized heading. Fragments before the first heading, and everything
// under a stop heading, land in "other" sections. The result is a partition:
// no fragment is dropped. The second return value counts heading-shaped
// fragments that matched no known pattern.
func (g *Segmenter) Segment(fragments []TextFragment) ([]Section, int) {
	sections := []Section{}
	current := Section{Label: SectionOther}
	unmatched := 0

	flush := func() {
		if len(current.Fragments) > 0 {
			sections = append(sections, current)
		}
	}

	for _, f := range fragments {
		if label, ok := matchHeading(f.Text); ok {
			flush()
			current = Section{
				Label:     label,
				Heading:   collapseWhitespace(f.Text),
				Fragments: []TextFragment{f},
			}
			continue
		}
		if headingShaped(f.Text) {
			unmatched++
		}
		current.Fragments = append(current.Fragments, f)
	}
	flush()

	return sections, unmatched
}

// matchHeading reports whether a fragment is a heading candidate and which
// label it opens. Ties between patterns go to the longest literal match.
func matchHeading(text string) (SectionLabel, bool) {
	t := strings.ToLower(collapseWhitespace(text))
	if t == "" || len(strings.Fields(t)) > maxHeadingWords {
		return SectionOther, false
	}
	// table rows and spec codes carry digits, headings do not
	if strings.ContainsAny(t, "0123456789") {
		return SectionOther, false
	}

	best := -1
	var bestLabel SectionLabel
	for _, p := range headingPatterns {
		if strings.Contains(t, p.literal) && len(p.literal) > best {
			best = len(p.literal)
			bestLabel = p.label
		}
	}
	return bestLabel, best >= 0
}

// headingShaped reports whether a fragment looks like a heading (short,
// letters only, upper-cased) without matching any known pattern. Counted for
// diagnostics; never an error.
func headingShaped(text string) bool {
	t := collapseWhitespace(text)
	if t == "" || len(strings.Fields(t)) > 4 {
		return false
	}
	hasLetter := false
	for _, r := range t {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
