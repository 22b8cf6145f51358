package redaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// TestHTMLRedactor_Render_PreservesOrderAndEscapesContent covers spec.md
// §4.6's HTML rendering rule: decrypted and redacted sections interleave in
// original order, and user-supplied content is HTML-escaped rather than
// injected raw.
func TestHTMLRedactor_Render_PreservesOrderAndEscapesContent(t *testing.T) {
	r := NewHTMLRedactor()

	projected := &entity.ProjectedSections{
		Decrypted: []entity.Section{
			{SectionID: "s1", Clearance: entity.ClassificationInternal, Content: "<script>alert(1)</script>"},
		},
		Redacted: []entity.RedactedSection{
			{SectionID: "s2", Clearance: entity.ClassificationTopSecret},
		},
		Order: []entity.SectionRef{
			{SectionID: "s1", IsRedacted: false},
			{SectionID: "s2", IsRedacted: true},
		},
	}

	out, err := r.Render(projected, entity.SourceFormatHTML)
	require.NoError(t, err)
	rendered := string(out)

	s1Idx := indexOf(rendered, `data-section-id="s1"`)
	s2Idx := indexOf(rendered, `data-section-id="s2"`)
	require.GreaterOrEqual(t, s1Idx, 0)
	require.GreaterOrEqual(t, s2Idx, 0)
	assert.Less(t, s1Idx, s2Idx, "sections must render in original order")

	assert.NotContains(t, rendered, "<script>alert(1)</script>")
	assert.Contains(t, rendered, "&lt;script&gt;")
	assert.Contains(t, rendered, "Content withheld")
	assert.Contains(t, rendered, "TOP-SECRET")
}

func TestHTMLRedactor_Format(t *testing.T) {
	assert.Equal(t, entity.SourceFormatHTML, NewHTMLRedactor().Format())
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
