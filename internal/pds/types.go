package pds

// Rectangle is an axis-aligned bounding box in PDF user-space points.
// Y grows upward, matching PDF page coordinates.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextFragment is a single extracted text run with positional metadata.
// Fragments are produced only by the Extractor and are ordered by natural
// reading order: page, then top-to-bottom, then left-to-right.
type TextFragment struct {
	Text        string     `json:"text"`
	Page        int        `json:"page"`
	OrderIndex  int        `json:"order_index"`
	BoundingBox *Rectangle `json:"bounding_box,omitempty"` // nil when layout metadata was unavailable
}

// SectionLabel classifies a contiguous region of a document's text.
type SectionLabel int

const (
	SectionOther SectionLabel = iota
	SectionApprovals
	SectionTypicalProperties
)

// String returns a human-readable name for the section label.
func (l SectionLabel) String() string {
	switch l {
	case SectionApprovals:
		return "approvals"
	case SectionTypicalProperties:
		return "typical_properties"
	default:
		return "other"
	}
}

// Section is a labeled, contiguous run of fragments. The Segmenter produces
// a partition: every input fragment belongs to exactly one section.
type Section struct {
	Label     SectionLabel   `json:"label"`
	Heading   string         `json:"heading,omitempty"` // matched heading text, empty for the leading "other" section
	Fragments []TextFragment `json:"fragments"`
}

// Body returns the section's fragments without the heading fragment.
func (s *Section) Body() []TextFragment {
	if s == nil {
		return nil
	}
	if s.Heading != "" && len(s.Fragments) > 0 {
		return s.Fragments[1:]
	}
	return s.Fragments
}

// PropertyRecord is one typical-property measurement in source order.
type PropertyRecord struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	OrderIndex     int    `json:"order_index"`
}

// ExtractionDiagnostics counts the soft anomalies encountered while building
// a record. These degrade output quality but never abort the pipeline.
type ExtractionDiagnostics struct {
	Pages             int `json:"pages"`
	Fragments         int `json:"fragments"`
	EmptyFragments    int `json:"empty_fragments"`
	DiscardedRuns     int `json:"discarded_runs"`
	UnmatchedHeadings int `json:"unmatched_headings"`
}

// ProductRecord is the structured result of extracting one PDS document.
// It is owned exclusively by the request that created it and never persisted.
type ProductRecord struct {
	SourceID    string                `json:"source_id"`
	ProductName string                `json:"product_name,omitempty"`
	Revision    string                `json:"revision,omitempty"`
	Approvals   []string              `json:"approvals"`
	Properties  []PropertyRecord      `json:"properties"`
	Diagnostics ExtractionDiagnostics `json:"diagnostics"`
}

// DisplayName returns the product name, falling back to the source identity.
func (r *ProductRecord) DisplayName() string {
	if r.ProductName != "" {
		return r.ProductName
	}
	return r.SourceID
}

// Presence classifies which side of a comparison holds a property.
type Presence int

const (
	PresenceBoth Presence = iota
	PresenceOnlyA
	PresenceOnlyB
)

// ComparisonRow aligns one property across two product records. Rows follow
// record A's source order, with B-only rows appended in B's order.
type ComparisonRow struct {
	NormalizedName string   `json:"normalized_name"`
	Name           string   `json:"name"`
	ValueA         string   `json:"value_a,omitempty"`
	UnitA          string   `json:"unit_a,omitempty"`
	ValueB         string   `json:"value_b,omitempty"`
	UnitB          string   `json:"unit_b,omitempty"`
	Present        Presence `json:"present"`
}

// SourceDocument is a fetched PDF handed to the pipeline by a collaborator.
type SourceDocument struct {
	SourceID string
	Data     []byte
}

// AnswerResult is the rendered output of a summary or comparison request.
type AnswerResult struct {
	ReplyMarkdown string         `json:"reply_markdown"`
	ProductA      *ProductRecord `json:"product_a"`
	ProductB      *ProductRecord `json:"product_b,omitempty"`
}
