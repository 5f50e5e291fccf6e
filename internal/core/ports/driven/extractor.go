package driven

import "context"

// TextExtractor pulls plain text out of a source document.
// The retrieval core only consumes the returned string; byte-level
// parsing is the adapter's concern.
type TextExtractor interface {
	// ExtractText reads the document at path and returns its text and
	// page count. Unreadable or corrupt input yields an error wrapping
	// domain.ErrExtraction.
	ExtractText(ctx context.Context, path string) (text string, pages int, err error)
}

// MetadataParser derives bibliographic metadata from extracted text.
// Heuristic by nature; empty fields are acceptable.
type MetadataParser interface {
	// Parse returns title, authors and abstract guessed from the text.
	Parse(fullText string) (title, authors, abstract string)
}
