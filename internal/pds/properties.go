package pds

import "sort"

// rowTolerance is the vertical distance, in points, within which fragments
// are considered part of the same visual row.
const rowTolerance = 5.0

// PropertiesParser turns a typical-properties section into an ordered
// sequence of property records. Table layouts are recovered by an ordered
// chain of try-parse strategies; the first applicable strategy wins per
// contiguous fragment run.
type PropertiesParser struct {
	strategies []parseStrategy
}

// NewPropertiesParser creates a properties parser backed by the given
// normalizer (used for known-name pairing in the last-resort strategy).
func NewPropertiesParser(norm *normalizer) *PropertiesParser {
	return &PropertiesParser{
		strategies: []parseStrategy{
			columnBandStrategy{},
			whitespaceSplitStrategy{},
			adjacentPairStrategy{norm: norm},
		},
	}
}

// Parse extracts property records from the section in source order. Runs that
// no strategy can interpret are discarded from structured output and counted;
// this is a lossy, accepted outcome, not an error. The returned records carry
// strictly increasing order indexes; NormalizedName is left for the
// normalizer to fill in.
func (p *PropertiesParser) Parse(section *Section) ([]PropertyRecord, int) {
	records := []PropertyRecord{}
	if section == nil {
		return records, 0
	}

	lines := groupLines(section.Body())

	discardedRuns := 0
	inDiscardRun := false
	pos := 0
	for pos < len(lines) {
		consumed := 0
		var parsed []PropertyRecord
		for _, strat := range p.strategies {
			if recs, n := strat.tryParse(lines[pos:]); n > 0 {
				parsed, consumed = recs, n
				break
			}
		}
		if consumed == 0 {
			// contiguous unparseable lines count as a single run
			if !inDiscardRun {
				discardedRuns++
				inDiscardRun = true
			}
			pos++
			continue
		}
		inDiscardRun = false
		for _, rec := range parsed {
			rec.OrderIndex = len(records)
			records = append(records, rec)
		}
		pos += consumed
	}

	return records, discardedRuns
}

// groupLines clusters fragments into visual rows: fragments on the same page
// whose vertical positions fall within rowTolerance share a line, ordered
// left to right. Fragments without layout metadata each form their own line.
func groupLines(fragments []TextFragment) []tableLine {
	var lines []tableLine
	for _, f := range fragments {
		if f.BoundingBox == nil {
			lines = append(lines, tableLine{cells: []TextFragment{f}})
			continue
		}
		placed := false
		for i := len(lines) - 1; i >= 0; i-- {
			last := lines[i]
			if !last.hasBoxes() || last.cells[0].Page != f.Page {
				break
			}
			if abs(last.cells[0].BoundingBox.Y-f.BoundingBox.Y) <= rowTolerance {
				lines[i].cells = append(lines[i].cells, f)
				placed = true
			}
			break
		}
		if !placed {
			lines = append(lines, tableLine{cells: []TextFragment{f}})
		}
	}

	for i := range lines {
		line := &lines[i]
		if line.hasBoxes() {
			sort.SliceStable(line.cells, func(a, b int) bool {
				return line.cells[a].BoundingBox.X < line.cells[b].BoundingBox.X
			})
		}
		parts := make([]string, 0, len(line.cells))
		for _, c := range line.cells {
			parts = append(parts, c.Text)
		}
		line.text = joinCells(parts)
	}
	return lines
}

// joinCells renders a row's cells with an explicit column gap so the
// whitespace-split strategy can recover the fields.
func joinCells(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "  "
		}
		out += p
	}
	return out
}
