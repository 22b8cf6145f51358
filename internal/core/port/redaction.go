package port

import "github.com/techcorp/classified-doc-broker/internal/core/entity"

// Redactor renders a ProjectedSections result back into the document's
// native format (HTML or DOCX), replacing redacted sections with a visible
// placeholder rather than omitting them outright (C6, spec.md §4.6: "a
// reader must be able to see that content was withheld, not just that the
// document is shorter than expected").
type Redactor interface {
	// Render reassembles sections, in order, into a single document of the
	// given format.
	Render(projected *entity.ProjectedSections, format entity.SourceFormat) ([]byte, error)

	// Format reports which SourceFormat this redactor handles.
	Format() entity.SourceFormat
}
