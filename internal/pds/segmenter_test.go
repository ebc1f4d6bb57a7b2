package pds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragmentsFrom(texts ...string) []TextFragment {
	out := make([]TextFragment, 0, len(texts))
	for i, t := range texts {
		out = append(out, TextFragment{Text: t, Page: 1, OrderIndex: i})
	}
	return out
}

func TestSegmentPartition(t *testing.T) {
	fragments := fragmentsFrom(
		"Valvoline SynPower 5W-30",
		"Fully synthetic passenger car motor oil",
		"Approvals & Specifications",
		"API SN, ACEA A3/B4",
		"MB 229.5",
		"Typical properties",
		"Viscosity @ 40°C  68.4  mm2/s",
		"Viscosity Index  172",
		"Health and safety",
		"Keep out of reach of children.",
	)

	seg := NewSegmenter()
	sections, unmatched := seg.Segment(fragments)

	require.Len(t, sections, 4)
	assert.Equal(t, SectionOther, sections[0].Label)
	assert.Equal(t, SectionApprovals, sections[1].Label)
	assert.Equal(t, SectionTypicalProperties, sections[2].Label)
	assert.Equal(t, SectionOther, sections[3].Label)
	assert.Equal(t, 0, unmatched)

	// every fragment lands in exactly one section
	total := 0
	for _, s := range sections {
		total += len(s.Fragments)
	}
	assert.Equal(t, len(fragments), total)

	// body excludes the heading fragment
	body := sections[1].Body()
	require.Len(t, body, 2)
	assert.Equal(t, "API SN, ACEA A3/B4", body[0].Text)
}

func TestSegmentNoHeadings(t *testing.T) {
	fragments := fragmentsFrom("just a paragraph", "and another one")

	sections, _ := NewSegmenter().Segment(fragments)

	require.Len(t, sections, 1)
	assert.Equal(t, SectionOther, sections[0].Label)
	assert.Empty(t, sections[0].Heading)
	assert.Len(t, sections[0].Fragments, 2)
}

func TestSegmentEmptyInput(t *testing.T) {
	sections, unmatched := NewSegmenter().Segment(nil)
	assert.Empty(t, sections)
	assert.Equal(t, 0, unmatched)
}

func TestMatchHeading(t *testing.T) {
	tests := []struct {
		text      string
		wantLabel SectionLabel
		wantMatch bool
	}{
		{"Approvals & Specifications", SectionApprovals, true},
		{"GODKJENNINGER", SectionApprovals, true},
		{"Typiske egenskaper", SectionTypicalProperties, true},
		{"Typical Properties", SectionTypicalProperties, true},
		{"Storage", SectionOther, true},
		// digit-bearing lines are table rows or codes, never headings
		{"Performance level 10", SectionOther, false},
		{"Viscosity @ 40°C", SectionOther, false},
		// prose sentences containing a heading phrase are not headings
		{"this product meets the requirements of many modern engines today", SectionOther, false},
		{"", SectionOther, false},
	}
	for _, tt := range tests {
		label, ok := matchHeading(tt.text)
		assert.Equal(t, tt.wantMatch, ok, "match for %q", tt.text)
		if tt.wantMatch {
			assert.Equal(t, tt.wantLabel, label, "label for %q", tt.text)
		}
	}
}

func TestSegmentCountsUnmatchedHeadings(t *testing.T) {
	fragments := fragmentsFrom(
		"Typical properties",
		"Viscosity Index  172",
		"PACKAGING", // heading-shaped, unknown phrase
	)

	sections, unmatched := NewSegmenter().Segment(fragments)

	assert.Equal(t, 1, unmatched)
	// unknown headings never open a section; the fragment stays in place
	require.Len(t, sections, 1)
	assert.Len(t, sections[0].Fragments, 3)
}
