package sectionparser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// documentXMLPath is the canonical OOXML part holding the document body.
const documentXMLPath = "word/document.xml"

// clearanceTagPrefix identifies a Structured Document Tag (Content Control)
// that contributes a section: its w:tag value is "clearance:LEVEL"
// (spec.md §4.4 DOCX rule).
const clearanceTagPrefix = "clearance:"

// DOCXParser implements port.SectionParser for entity.SourceFormatDOCX. No
// OOXML library exists anywhere in the example pack, so this walks the ZIP
// container and document.xml with stdlib archive/zip + encoding/xml —
// justified in DESIGN.md.
type DOCXParser struct{}

// NewDOCXParser constructs a DOCXParser.
func NewDOCXParser() *DOCXParser {
	return &DOCXParser{}
}

// Format reports entity.SourceFormatDOCX.
func (p *DOCXParser) Format() entity.SourceFormat {
	return entity.SourceFormatDOCX
}

// Parse opens the DOCX ZIP container, validates integrity, and walks
// document.xml for clearance-tagged Content Controls.
func (p *DOCXParser) Parse(raw []byte, format entity.SourceFormat) (*entity.ParsedDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("section parser: %w: %w", entity.ErrZipIntegrity, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == documentXMLPath {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("section parser: open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("section parser: read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("section parser: missing %s: %w", documentXMLPath, entity.ErrInputInvalid)
	}

	sections, err := walkContentControls(docXML)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, entity.ErrInputInvalid
	}

	counts := map[entity.ClassificationLevel]int{}
	overall := entity.ClassificationInternal
	for _, s := range sections {
		counts[s.Clearance]++
		if s.Clearance.Rank() > overall.Rank() {
			overall = s.Clearance
		}
	}

	return &entity.ParsedDocument{
		Sections: sections,
		Title:    extractDocxTitle(zr),
		Metadata: entity.SectionMetadataSummary{
			OverallClassification: overall,
			PerLevelCounts:        counts,
			SourceFormat:          entity.SourceFormatDOCX,
		},
	}, nil
}

// sdtElement mirrors the subset of a w:sdt (Structured Document Tag) element
// this parser cares about: its tag, id, and the concatenated text of every
// run nested inside its content.
type sdtElement struct {
	XMLName xml.Name
	SdtPr   struct {
		Tag struct {
			Val string `xml:"val,attr"`
		} `xml:"tag"`
		ID struct {
			Val string `xml:"val,attr"`
		} `xml:"id"`
	} `xml:"sdtPr"`
	Content struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"sdtContent"`
}

func walkContentControls(docXML []byte) ([]entity.Section, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))
	var sections []entity.Section

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("section parser: %w: %w", entity.ErrMalformedDocumentXML, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sdt" {
			continue
		}

		var el sdtElement
		if err := decoder.DecodeElement(&el, &se); err != nil {
			return nil, fmt.Errorf("section parser: %w: %w", entity.ErrMalformedDocumentXML, err)
		}
		tag := el.SdtPr.Tag.Val
		if !strings.HasPrefix(tag, clearanceTagPrefix) {
			continue
		}
		levelStr := strings.TrimPrefix(tag, clearanceTagPrefix)
		level, err := entity.ParseClassificationLevel(levelStr)
		if err != nil {
			return nil, err
		}

		sectionID := fmt.Sprintf("%s/%s", el.SdtPr.ID.Val, tag)
		content := collapseWhitespace(extractRunText(el.Content.Inner))
		sections = append(sections, entity.Section{
			SectionID: sectionID,
			Clearance: level,
			Content:   content,
		})
	}
	return sections, nil
}

// extractRunText pulls the text of every w:t run inside a raw inner-XML
// fragment, ignoring run properties, bookmarks, and other structural noise.
func extractRunText(inner []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(inner))
	var sb strings.Builder
	inRun := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inRun = false
			}
		case xml.CharData:
			if inRun {
				sb.Write(t)
			}
		}
	}
	return sb.String()
}

// extractDocxTitle reads docProps/core.xml's dc:title, falling back to the
// empty string (the caller derives from filename when absent, per
// spec.md §4.4).
func extractDocxTitle(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != "docProps/core.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()
		var core struct {
			Title string `xml:"title"`
		}
		if xml.NewDecoder(rc).Decode(&core) == nil {
			return strings.TrimSpace(core.Title)
		}
	}
	return ""
}
