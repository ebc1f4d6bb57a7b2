package pds

import (
	"regexp"
	"unicode"
)

// Table geometry tolerances, in PDF points.
const (
	bandTolerance = 14.0
	minBandLines  = 3
)

// tableLine groups the horizontally adjacent fragments of one visual row.
type tableLine struct {
	cells []TextFragment // left to right
	text  string         // cell texts joined with a column gap
}

func (l tableLine) hasBoxes() bool {
	for _, c := range l.cells {
		if c.BoundingBox == nil {
			return false
		}
	}
	return len(l.cells) > 0
}

// parseStrategy is one try-parse step of the properties fallback chain.
// tryParse consumes a prefix of lines and returns the parsed records plus the
// number of lines consumed; zero consumed means the strategy does not apply.
type parseStrategy interface {
	name() string
	tryParse(lines []tableLine) ([]PropertyRecord, int)
}

// columnBandStrategy handles true tables: runs of at least three consecutive
// multi-cell lines whose leftmost and rightmost cells align into vertical
// bands.
type columnBandStrategy struct{}

func (columnBandStrategy) name() string { return "column-bands" }

func (columnBandStrategy) tryParse(lines []tableLine) ([]PropertyRecord, int) {
	if len(lines) < minBandLines || !isBandRow(lines[0]) {
		return nil, 0
	}

	run := 1
	for run < len(lines) && isBandRow(lines[run]) && bandsAligned(lines[0], lines[run]) {
		run++
	}
	if run < minBandLines {
		return nil, 0
	}

	var records []PropertyRecord
	for _, line := range lines[:run] {
		fields := make([]string, 0, len(line.cells))
		for _, c := range line.cells {
			if t := collapseWhitespace(c.Text); t != "" {
				fields = append(fields, t)
			}
		}
		if rec, ok := recordFromFields(fields); ok {
			records = append(records, rec)
		}
	}
	return records, run
}

func isBandRow(l tableLine) bool {
	return len(l.cells) >= 2 && l.hasBoxes()
}

// bandsAligned compares the leftmost and rightmost cell positions of two
// rows; matching both means at least two consistent column bands.
func bandsAligned(a, b tableLine) bool {
	firstA, lastA := a.cells[0].BoundingBox.X, a.cells[len(a.cells)-1].BoundingBox.X
	firstB, lastB := b.cells[0].BoundingBox.X, b.cells[len(b.cells)-1].BoundingBox.X
	return abs(firstA-firstB) <= bandTolerance && abs(lastA-lastB) <= bandTolerance
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

var (
	columnSplitRe = regexp.MustCompile(`\t|\||\s{2,}`)
	colonRowRe    = regexp.MustCompile(`^([A-Za-z][^:]{0,80}?)\s*[:]\s*([<>]?\s*\S.*)$`)
	trailMethodRe = regexp.MustCompile(`\s*\(\s*(?:ASTM|ISO|DIN|IP)[^)]*\)\s*$`)
)

// whitespaceSplitStrategy handles pseudo-columns: a single line whose text
// splits on tabs, pipes or runs of two or more spaces into exactly two or
// three fields. Rows written as "name: value (ASTM ...)" are accepted too.
type whitespaceSplitStrategy struct{}

func (whitespaceSplitStrategy) name() string { return "whitespace-split" }

func (whitespaceSplitStrategy) tryParse(lines []tableLine) ([]PropertyRecord, int) {
	line := lines[0]

	var fields []string
	if len(line.cells) >= 2 {
		for _, c := range line.cells {
			if t := collapseWhitespace(c.Text); t != "" {
				fields = append(fields, t)
			}
		}
	} else {
		for _, f := range columnSplitRe.Split(line.text, -1) {
			if t := collapseWhitespace(f); t != "" {
				fields = append(fields, t)
			}
		}
	}

	if len(fields) == 2 || len(fields) == 3 {
		if rec, ok := recordFromFields(fields); ok {
			return []PropertyRecord{rec}, 1
		}
	}

	// "Pour Point, °C: -30 (ASTM D-97)" style rows
	if m := colonRowRe.FindStringSubmatch(collapseWhitespace(line.text)); m != nil {
		value := trailMethodRe.ReplaceAllString(m[2], "")
		if rec, ok := recordFromFields([]string{m[1], value}); ok {
			return []PropertyRecord{rec}, 1
		}
	}

	return nil, 0
}

// adjacentPairStrategy pairs a known property-name fragment with the next
// non-empty fragment as its value.
type adjacentPairStrategy struct {
	norm *normalizer
}

func (adjacentPairStrategy) name() string { return "adjacent-pair" }

func (s adjacentPairStrategy) tryParse(lines []tableLine) ([]PropertyRecord, int) {
	if len(lines) < 2 || len(lines[0].cells) > 1 {
		return nil, 0
	}
	name := collapseWhitespace(lines[0].text)
	if name == "" || !s.norm.Known(name) {
		return nil, 0
	}
	value := collapseWhitespace(lines[1].text)
	if value == "" {
		return nil, 0
	}
	if rec, ok := recordFromFields([]string{name, value}); ok {
		return []PropertyRecord{rec}, 2
	}
	return nil, 0
}

// recordFromFields assigns name/value/unit slots from split fields. The first
// field is the name and the rightmost value-bearing field is the value;
// unit-shaped tokens are routed into the unit slot regardless of column
// position, and a unit inlined in the value wins over a column-derived one.
func recordFromFields(fields []string) (PropertyRecord, bool) {
	if len(fields) < 2 {
		return PropertyRecord{}, false
	}
	name := collapseWhitespace(fields[0])
	if name == "" || !startsWithLetter(name) {
		return PropertyRecord{}, false
	}

	value, unit := "", ""
	switch rest := fields[1:]; len(rest) {
	case 1:
		value = rest[0]
	case 2:
		switch {
		case isUnitToken(rest[1]) && !isUnitToken(rest[0]):
			value, unit = rest[0], rest[1]
		case isUnitToken(rest[0]):
			unit, value = rest[0], rest[1]
		default:
			// middle field carries a test method; keep the rightmost as value
			value = rest[1]
		}
	default:
		return PropertyRecord{}, false
	}

	value = collapseWhitespace(trailMethodRe.ReplaceAllString(value, ""))
	if value == "" {
		return PropertyRecord{}, false
	}
	if v, u := splitInlineUnit(value); u != "" {
		value, unit = v, u
	}

	return PropertyRecord{Name: name, Value: value, Unit: unit}, true
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}
