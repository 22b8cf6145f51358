package port

import "github.com/techcorp/classified-doc-broker/internal/core/entity"

// SectionParser splits an uploaded document into its constituent sections,
// each carrying its own classification level (C4, spec.md §4.4). Two
// implementations exist, one per SourceFormat: an HTML tree walker and a
// DOCX/OOXML content-control walker (C15).
type SectionParser interface {
	// Parse extracts sections from raw document bytes of the given format.
	Parse(raw []byte, format entity.SourceFormat) (*entity.ParsedDocument, error)

	// Format reports which SourceFormat this parser handles.
	Format() entity.SourceFormat
}
