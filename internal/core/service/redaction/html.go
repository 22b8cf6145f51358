package redaction

import (
	"fmt"
	"html"
	"strings"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// HTMLRedactor implements port.Redactor for entity.SourceFormatHTML. It
// renders each section in original order, wrapping visible content in a
// clearance-annotated container and replacing redacted sections with a
// visually distinctive placeholder naming the section's level. The reader's
// own granted level does not appear in the output.
type HTMLRedactor struct{}

// NewHTMLRedactor constructs an HTMLRedactor.
func NewHTMLRedactor() *HTMLRedactor {
	return &HTMLRedactor{}
}

// Format reports entity.SourceFormatHTML.
func (r *HTMLRedactor) Format() entity.SourceFormat {
	return entity.SourceFormatHTML
}

// Render implements port.Redactor.
func (r *HTMLRedactor) Render(projected *entity.ProjectedSections, format entity.SourceFormat) ([]byte, error) {
	decrypted := make(map[string]entity.Section, len(projected.Decrypted))
	for _, s := range projected.Decrypted {
		decrypted[s.SectionID] = s
	}
	redacted := make(map[string]entity.RedactedSection, len(projected.Redacted))
	for _, s := range projected.Redacted {
		redacted[s.SectionID] = s
	}

	var body strings.Builder
	for _, ref := range projected.Order {
		if ref.IsRedacted {
			s := redacted[ref.SectionID]
			fmt.Fprintf(&body,
				`<section class="docbroker-redacted" data-clearance="%s" data-section-id="%s">`+
					`<p class="docbroker-redacted-notice">Content withheld — requires %s clearance or higher.</p></section>`+"\n",
				html.EscapeString(s.Clearance.String()), html.EscapeString(s.SectionID), html.EscapeString(s.Clearance.String()))
			continue
		}
		s := decrypted[ref.SectionID]
		fmt.Fprintf(&body,
			`<section class="docbroker-section" data-clearance="%s" data-section-id="%s">%s</section>`+"\n",
			html.EscapeString(s.Clearance.String()), html.EscapeString(s.SectionID), html.EscapeString(s.Content))
	}

	out := fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n%s</body></html>\n", body.String())
	return []byte(out), nil
}
