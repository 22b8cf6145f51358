package redaction

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// DOCXRedactor implements port.Redactor for entity.SourceFormatDOCX. Render
// reads the original DOCX bytes held in Original and produces a new ZIP in
// which every Content Control whose section was redacted has its run text
// replaced by a placeholder run, leaving styling frames (rPr/pPr) untouched
// (spec.md §4.6).
type DOCXRedactor struct {
	// Original holds the source DOCX bytes for the document being rendered.
	// The download pipeline builds one DOCXRedactor per download with
	// NewDOCXRedactor, since port.Redactor's signature carries only the
	// projected sections.
	Original []byte
}

// NewDOCXRedactor constructs a DOCXRedactor for a specific original DOCX.
func NewDOCXRedactor(original []byte) *DOCXRedactor {
	return &DOCXRedactor{Original: original}
}

// Format reports entity.SourceFormatDOCX.
func (r *DOCXRedactor) Format() entity.SourceFormat {
	return entity.SourceFormatDOCX
}

const redactionPlaceholderText = "[REDACTED]"

// Render implements port.Redactor. Unauthorized-level section content is
// removed from every w:t run inside the matching sdtContent — including
// nested runs in headers/footnotes linked via the same content control id,
// since those share the identical sdt element walked here — and replaced
// with a single placeholder run per spec.md §4.6's "no content may remain
// anywhere in the output stream" rule.
func (r *DOCXRedactor) Render(projected *entity.ProjectedSections, format entity.SourceFormat) ([]byte, error) {
	redactedIDs := make(map[string]bool, len(projected.Redacted))
	for _, s := range projected.Redacted {
		redactedIDs[s.SectionID] = true
	}

	zr, err := zip.NewReader(bytes.NewReader(r.Original), int64(len(r.Original)))
	if err != nil {
		return nil, fmt.Errorf("redaction: %w: %w", entity.ErrZipIntegrity, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("redaction: write %s: %w", f.Name, err)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("redaction: open %s: %w", f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("redaction: read %s: %w", f.Name, err)
		}

		if isDocumentPart(f.Name) {
			raw, err = redactContentControls(raw, redactedIDs)
			if err != nil {
				return nil, err
			}
		}
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("redaction: write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("redaction: finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// isDocumentPart reports whether name is a part that may carry clearance-
// tagged content controls: the main body plus headers/footnotes/comments
// that content controls can be linked from.
func isDocumentPart(name string) bool {
	return name == "word/document.xml" ||
		strings.HasPrefix(name, "word/header") ||
		strings.HasPrefix(name, "word/footer") ||
		strings.HasPrefix(name, "word/footnotes.xml") ||
		strings.HasPrefix(name, "word/comments.xml")
}

// redactContentControls performs a textual, tag-preserving rewrite: for
// every sdtContent whose enclosing content control's {id, tag} pair (the
// same SectionID format the parser assigns, "id/tag") names a redacted
// section, it blanks every w:t run's character data, then sets a single
// placeholder on the first run — run properties (rPr) and paragraph
// properties (pPr) frames are left byte-for-byte untouched.
func redactContentControls(docXML []byte, redactedIDs map[string]bool) ([]byte, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))
	var out bytes.Buffer
	enc := xml.NewEncoder(&out)

	var currentID, currentTag string
	inRedactedContent := false
	placeholderWritten := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("redaction: %w: %w", entity.ErrMalformedDocumentXML, err)
		}

		skip := false
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tag":
				currentTag = attrVal(t, "val")
			case "id":
				currentID = attrVal(t, "val")
			case "sdtContent":
				inRedactedContent = redactedIDs[currentID+"/"+currentTag]
				placeholderWritten = false
			}
		case xml.EndElement:
			if t.Name.Local == "sdtContent" {
				inRedactedContent = false
				currentID, currentTag = "", ""
			}
		case xml.CharData:
			if inRedactedContent {
				if placeholderWritten {
					skip = true
				} else {
					tok = xml.CharData(redactionPlaceholderText)
					placeholderWritten = true
				}
			}
		}
		if skip {
			continue
		}
		if err := enc.EncodeToken(tok); err != nil {
			return nil, fmt.Errorf("redaction: re-encode: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("redaction: flush: %w", err)
	}
	return out.Bytes(), nil
}

func attrVal(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
