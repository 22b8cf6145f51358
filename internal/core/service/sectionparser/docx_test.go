package sectionparser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

func buildTestDOCXWithDocument(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentXMLPath)
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxWithTwoClearanceControls = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:sdt><w:sdtPr><w:tag w:val="clearance:INTERNAL"/><w:id w:val="1"/></w:sdtPr>
<w:sdtContent><w:p><w:r><w:t>Overview</w:t></w:r></w:p></w:sdtContent></w:sdt>
<w:sdt><w:sdtPr><w:tag w:val="clearance:TOP-SECRET"/><w:id w:val="2"/></w:sdtPr>
<w:sdtContent><w:p><w:r><w:t>Datacenter coordinates</w:t></w:r></w:p></w:sdtContent></w:sdt>
</w:body>
</w:document>`

func TestDOCXParser_Parse_ExtractsClearanceTaggedControls(t *testing.T) {
	p := NewDOCXParser()
	raw := buildTestDOCXWithDocument(t, docxWithTwoClearanceControls)

	doc, err := p.Parse(raw, entity.SourceFormatDOCX)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, entity.ClassificationInternal, doc.Sections[0].Clearance)
	assert.Equal(t, "Overview", doc.Sections[0].Content)
	assert.Equal(t, entity.ClassificationTopSecret, doc.Sections[1].Clearance)
	assert.Equal(t, entity.ClassificationTopSecret, doc.Metadata.OverallClassification)
}

// TestDOCXParser_Parse_NoClearanceTaggedControls covers spec.md §8's
// boundary behavior: zero tagged sections must fail with ErrInputInvalid,
// even though the document otherwise parses as a well-formed DOCX.
func TestDOCXParser_Parse_NoClearanceTaggedControls(t *testing.T) {
	p := NewDOCXParser()
	raw := buildTestDOCXWithDocument(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>Untagged paragraph</w:t></w:r></w:p></w:body>
</w:document>`)

	_, err := p.Parse(raw, entity.SourceFormatDOCX)
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}

// TestDOCXParser_Parse_UnknownClearanceLevelTag covers the named boundary:
// a Content Control whose clearance tag names an unrecognized level must
// abort the parse rather than silently defaulting.
func TestDOCXParser_Parse_UnknownClearanceLevelTag(t *testing.T) {
	p := NewDOCXParser()
	raw := buildTestDOCXWithDocument(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:sdt><w:sdtPr><w:tag w:val="clearance:ULTRA-MEGA-SECRET"/><w:id w:val="1"/></w:sdtPr>
<w:sdtContent><w:p><w:r><w:t>Nonsense level</w:t></w:r></w:p></w:sdtContent></w:sdt>
</w:body>
</w:document>`)

	_, err := p.Parse(raw, entity.SourceFormatDOCX)
	assert.ErrorIs(t, err, entity.ErrUnknownClearanceLevel)
}

func TestDOCXParser_Parse_MissingDocumentXML(t *testing.T) {
	p := NewDOCXParser()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.Close())

	_, err := p.Parse(buf.Bytes(), entity.SourceFormatDOCX)
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}

func TestDOCXParser_Parse_CorruptZip(t *testing.T) {
	p := NewDOCXParser()
	_, err := p.Parse([]byte("not a zip"), entity.SourceFormatDOCX)
	assert.ErrorIs(t, err, entity.ErrZipIntegrity)
}
