package sectionparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// TestHTMLParser_Parse_ExtractsTaggedSections covers the golden path: every
// data-clearance element becomes one section, with the correct overall
// classification computed as the max rank.
func TestHTMLParser_Parse_ExtractsTaggedSections(t *testing.T) {
	p := NewHTMLParser()
	raw := []byte(`<html><head><title>Q3 Plan</title></head><body>
		<div data-clearance="INTERNAL" id="s1">Overview</div>
		<div data-clearance="TOP-SECRET" id="s2">Datacenter coordinates</div>
	</body></html>`)

	doc, err := p.Parse(raw, entity.SourceFormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Plan", doc.Title)
	assert.Len(t, doc.Sections, 2)
	assert.Equal(t, entity.ClassificationTopSecret, doc.Metadata.OverallClassification)
}

// TestHTMLParser_Parse_NoTaggedSections covers spec.md §8's boundary
// behavior: an upload with zero tagged sections must fail with
// ErrInputInvalid.
func TestHTMLParser_Parse_NoTaggedSections(t *testing.T) {
	p := NewHTMLParser()
	raw := []byte(`<html><body><p>Nothing tagged here.</p></body></html>`)

	_, err := p.Parse(raw, entity.SourceFormatHTML)
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}

// TestHTMLParser_Parse_UnknownClearanceIsTreatedAsUntagged documents current
// behavior: an element whose data-clearance value doesn't parse is treated
// as untagged and contributes no section, so with nothing else tagged the
// parse fails with ErrInputInvalid rather than ErrUnknownClearanceLevel,
// unlike the DOCX parser's stricter handling of the same situation.
func TestHTMLParser_Parse_UnknownClearanceIsTreatedAsUntagged(t *testing.T) {
	p := NewHTMLParser()
	raw := []byte(`<html><body><div data-clearance="NOT-A-LEVEL" id="s1">Overview</div></body></html>`)

	_, err := p.Parse(raw, entity.SourceFormatHTML)
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}
