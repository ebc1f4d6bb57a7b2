package pds

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Text assembly tolerances, in PDF points.
const (
	// glyph runs on the same row further apart than this start a new cell
	cellGap = 12.0
	// smaller horizontal gaps still imply a word space
	spaceGap = 1.0
)

// documentMeta carries per-document facts gathered during extraction.
type documentMeta struct {
	Pages          int
	Title          string
	EmptyFragments int
}

// Extractor turns raw PDF bytes into an ordered sequence of text fragments
// with positional metadata. It is a pure transform: no side effects, no I/O
// beyond the byte slice handed in.
type Extractor struct {
	maxFileSize int64
}

// NewExtractor creates an extractor with the specified input size limit.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{maxFileSize: maxFileSize}
}

// Extract produces fragments in natural reading order: page, then vertical,
// then horizontal position. It fails with *ExtractionError when the byte
// stream is not a valid PDF or contains no extractable text layer. Glyph
// anomalies never abort extraction; fragments reduced to empty strings are
// dropped and counted in the returned metadata.
func (e *Extractor) Extract(sourceID string, data []byte) ([]TextFragment, documentMeta, error) {
	var meta documentMeta

	if len(data) == 0 {
		return nil, meta, &ExtractionError{SourceID: sourceID, Reason: "empty input"}
	}
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return nil, meta, &ExtractionError{SourceID: sourceID, Reason: "input exceeds size limit"}
	}

	// pdfcpu validates the cross-reference structure up front so a corrupt
	// stream fails here instead of half-way through page iteration.
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, meta, &ExtractionError{SourceID: sourceID, Reason: "not a valid PDF", Err: err}
	}
	meta.Pages = ctx.PageCount

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, meta, &ExtractionError{SourceID: sourceID, Reason: "cannot open PDF", Err: err}
	}

	meta.Title = documentTitle(reader)

	var fragments []TextFragment
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		texts := positionedTexts(page)
		if len(texts) > 0 {
			fragments = appendRowFragments(fragments, &meta, texts, pageNum)
			continue
		}

		// no positioned runs on this page; fall back to the plain text layer
		fragments = appendPlainFragments(fragments, &meta, page, pageNum)
	}

	if len(fragments) == 0 {
		return nil, meta, &ExtractionError{SourceID: sourceID, Reason: "no extractable text layer"}
	}
	return fragments, meta, nil
}

// positionedTexts collects the page's glyph runs, tolerating panics from
// malformed content streams or font dictionaries.
func positionedTexts(page pdf.Page) (texts []pdf.Text) {
	defer func() {
		if recover() != nil {
			texts = nil
		}
	}()
	return page.Content().Text
}

// textRow is a transient per-page accumulation of glyph runs sharing a
// vertical position.
type textRow struct {
	y     float64
	texts []pdf.Text
}

// appendRowFragments groups glyph runs into rows and cells and emits one
// fragment per cell, in reading order.
func appendRowFragments(fragments []TextFragment, meta *documentMeta, texts []pdf.Text, pageNum int) []TextFragment {
	const yTolerance = 2.0

	var rows []textRow
	for _, t := range texts {
		placed := false
		for i := range rows {
			if abs(rows[i].y-t.Y) < yTolerance {
				rows[i].texts = append(rows[i].texts, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, textRow{y: t.Y, texts: []pdf.Text{t}})
		}
	}

	// PDF user space runs bottom-up; reading order is top-down
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	for _, row := range rows {
		sort.SliceStable(row.texts, func(i, j int) bool { return row.texts[i].X < row.texts[j].X })
		for _, cell := range splitCells(row.texts) {
			text := collapseWhitespace(unifySymbols(cell.text))
			if text == "" {
				meta.EmptyFragments++
				continue
			}
			bbox := &Rectangle{
				X:      cell.x,
				Y:      row.y,
				Width:  cell.width,
				Height: cell.height,
			}
			fragments = append(fragments, TextFragment{
				Text:        text,
				Page:        pageNum,
				OrderIndex:  len(fragments),
				BoundingBox: bbox,
			})
		}
	}
	return fragments
}

type textCell struct {
	text   string
	x      float64
	width  float64
	height float64
}

// splitCells assembles a row's glyph runs into cells: adjacent runs merge,
// with a space inserted for word-sized gaps, while gaps wider than cellGap
// open a new cell.
func splitCells(texts []pdf.Text) []textCell {
	var cells []textCell
	var b strings.Builder
	var cur textCell
	var penX float64

	flush := func() {
		if b.Len() > 0 {
			cur.text = b.String()
			cur.width = penX - cur.x
			cells = append(cells, cur)
		}
		b.Reset()
	}

	for _, t := range texts {
		if b.Len() == 0 {
			cur = textCell{x: t.X, height: t.FontSize}
		} else {
			gap := t.X - penX
			if gap > cellGap {
				flush()
				cur = textCell{x: t.X, height: t.FontSize}
			} else if gap > spaceGap && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		if t.FontSize > cur.height {
			cur.height = t.FontSize
		}
		penX = t.X + t.W
	}
	flush()
	return cells
}

// appendPlainFragments emits one fragment per non-empty line of the page's
// plain text layer. No bounding boxes are available on this path.
func appendPlainFragments(fragments []TextFragment, meta *documentMeta, page pdf.Page, pageNum int) (out []TextFragment) {
	out = fragments
	defer func() {
		_ = recover()
	}()

	content, err := page.GetPlainText(nil)
	if err != nil {
		return out
	}
	for _, line := range strings.Split(content, "\n") {
		text := collapseWhitespace(unifySymbols(line))
		if text == "" {
			meta.EmptyFragments++
			continue
		}
		out = append(out, TextFragment{
			Text:       text,
			Page:       pageNum,
			OrderIndex: len(out),
		})
	}
	return out
}

// documentTitle reads the Info dictionary's Title entry, if present.
func documentTitle(reader *pdf.Reader) (title string) {
	defer func() {
		if recover() != nil {
			title = ""
		}
	}()

	trailer := reader.Trailer()
	if trailer.IsNull() {
		return ""
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return ""
	}
	t := info.Key("Title")
	if t.IsNull() {
		return ""
	}
	return collapseWhitespace(t.RawString())
}
