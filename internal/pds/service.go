package pds

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// LabelLookup resolves a locale identifier to its display-string table.
// Implemented by the locale collaborator; the core only requires lookup.
type LabelLookup interface {
	Labels(locale string) (map[string]string, bool)
}

// ServiceConfig configures the extraction and rendering service.
type ServiceConfig struct {
	MaxFileSize int64
	Labels      LabelLookup
	// ExtraSynonyms adds canonical->variants property aliases on top of the
	// built-in table. Read once here; the resulting index is immutable.
	ExtraSynonyms map[string][]string
	Logger        *slog.Logger
}

// Service runs the document-to-record pipeline and the renderer. It holds no
// per-request state: every intermediate value is owned by the call that
// created it, so a single Service is safe for concurrent use.
type Service struct {
	extractor  *Extractor
	segmenter  *Segmenter
	approvals  *ApprovalsParser
	properties *PropertiesParser
	norm       *normalizer
	renderer   *Renderer
	logger     *slog.Logger
}

// NewService creates a service with all pipeline components wired.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	norm := newNormalizer(cfg.ExtraSynonyms)
	return &Service{
		extractor:  NewExtractor(cfg.MaxFileSize),
		segmenter:  NewSegmenter(),
		approvals:  NewApprovalsParser(),
		properties: NewPropertiesParser(norm),
		norm:       norm,
		renderer:   NewRenderer(cfg.Labels),
		logger:     logger,
	}
}

// Extract runs the full pipeline on one PDF byte stream and returns its
// product record. Errors are *ExtractionError (unreadable input) or
// *EmptyDocumentError (readable but nothing PDS-shaped in it).
func (s *Service) Extract(sourceID string, data []byte) (*ProductRecord, error) {
	fragments, meta, err := s.extractor.Extract(sourceID, data)
	if err != nil {
		return nil, err
	}

	sections, unmatchedHeadings := s.segmenter.Segment(fragments)

	record := &ProductRecord{
		SourceID:   sourceID,
		Approvals:  []string{},
		Properties: []PropertyRecord{},
		Diagnostics: ExtractionDiagnostics{
			Pages:             meta.Pages,
			Fragments:         len(fragments),
			EmptyFragments:    meta.EmptyFragments,
			UnmatchedHeadings: unmatchedHeadings,
		},
	}

	recognized := false
	seenApprovals := make(map[string]bool)
	for i := range sections {
		section := &sections[i]
		switch section.Label {
		case SectionApprovals:
			recognized = true
			for _, code := range s.approvals.Parse(section) {
				key := strings.ToLower(code)
				if seenApprovals[key] {
					continue
				}
				seenApprovals[key] = true
				record.Approvals = append(record.Approvals, code)
			}
		case SectionTypicalProperties:
			recognized = true
			records, discarded := s.properties.Parse(section)
			record.Diagnostics.DiscardedRuns += discarded
			for _, rec := range records {
				rec.OrderIndex = len(record.Properties)
				rec.NormalizedName = s.norm.Normalize(rec.Name)
				record.Properties = append(record.Properties, rec)
			}
		}
	}

	if !recognized && len(record.Approvals) == 0 && len(record.Properties) == 0 {
		return nil, &EmptyDocumentError{SourceID: sourceID}
	}

	record.ProductName = productName(fragments, meta.Title, sourceID)
	record.Revision = revisionCode(fragments)

	s.logger.Debug("extracted product record",
		"source", sourceID,
		"approvals", len(record.Approvals),
		"properties", len(record.Properties),
		"discarded_runs", record.Diagnostics.DiscardedRuns,
		"empty_fragments", record.Diagnostics.EmptyFragments,
	)

	return record, nil
}

// Render produces the localized summary (recordB nil) or comparison output.
func (s *Service) Render(recordA, recordB *ProductRecord, locale string) (string, error) {
	return s.renderer.Render(recordA, recordB, locale)
}

// Summarize extracts one document and renders its summary.
func (s *Service) Summarize(doc SourceDocument, locale string) (*AnswerResult, error) {
	record, err := s.Extract(doc.SourceID, doc.Data)
	if err != nil {
		return nil, err
	}
	text, err := s.Render(record, nil, locale)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{ReplyMarkdown: text, ProductA: record}, nil
}

type extractOutcome struct {
	record *ProductRecord
	err    error
}

// Compare extracts both documents and renders a comparison. The two
// sub-pipelines share no data, so they run concurrently; correctness only
// requires both to finish before the join. Product A's error wins when both
// sides fail, keeping responses deterministic.
func (s *Service) Compare(docA, docB SourceDocument, locale string) (*AnswerResult, error) {
	chA := make(chan extractOutcome, 1)
	chB := make(chan extractOutcome, 1)

	go func() {
		record, err := s.Extract(docA.SourceID, docA.Data)
		chA <- extractOutcome{record: record, err: err}
	}()
	go func() {
		record, err := s.Extract(docB.SourceID, docB.Data)
		chB <- extractOutcome{record: record, err: err}
	}()

	a := <-chA
	b := <-chB
	if a.err != nil {
		return nil, a.err
	}
	if b.err != nil {
		return nil, b.err
	}

	text, err := s.Render(a.record, b.record, locale)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{ReplyMarkdown: text, ProductA: a.record, ProductB: b.record}, nil
}

// NormalizeName exposes the service's canonical property key derivation.
func (s *Service) NormalizeName(name string) string {
	return s.norm.Normalize(name)
}

var revisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Revision|Rev\.?|Version)\s*[: ]\s*([A-Za-z0-9./-]+(?: [A-Za-z0-9./-]+)?)`),
	regexp.MustCompile(`\b(\d{3}/\d+[A-Za-z]?)\b`),
	regexp.MustCompile(`\b(\d{2,4}/\d{1,2}[A-Za-z]?)\b`),
}

// productName picks the product heading line from the document head, the PDF
// metadata title, or the source's file stem, in that order.
func productName(fragments []TextFragment, title, sourceID string) string {
	head := fragments
	if len(head) > 20 {
		head = head[:20]
	}
	for _, f := range head {
		if strings.HasPrefix(strings.ToLower(f.Text), "valvoline") {
			return f.Text
		}
	}
	if title != "" {
		return title
	}
	stem := filepath.Base(sourceID)
	return strings.TrimSuffix(stem, filepath.Ext(stem))
}

// revisionCode finds a revision or issue code anywhere in the document.
func revisionCode(fragments []TextFragment) string {
	for _, re := range revisionPatterns {
		for _, f := range fragments {
			if m := re.FindStringSubmatch(f.Text); m != nil {
				return strings.ReplaceAll(collapseWhitespace(m[1]), " / ", "/")
			}
		}
	}
	return ""
}
