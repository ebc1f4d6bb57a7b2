package pds

import "fmt"

// ExtractionError indicates the input byte stream is not a readable PDF or
// carries no extractable text layer. Fatal to the request.
type ExtractionError struct {
	SourceID string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.SourceID, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.SourceID, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// EmptyDocumentError indicates a readable PDF in which no PDS-shaped content
// was found: no recognized section and no approvals or properties. Surfaced
// distinctly from ExtractionError so callers can report "not a PDS document"
// instead of "corrupt file".
type EmptyDocumentError struct {
	SourceID string
}

// Error implements the error interface.
func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("no PDS content found in %s", e.SourceID)
}

// UnsupportedLocaleError indicates the requested locale has no label table.
type UnsupportedLocaleError struct {
	Locale string
}

// Error implements the error interface.
func (e *UnsupportedLocaleError) Error() string {
	return fmt.Sprintf("unsupported locale: %q", e.Locale)
}
