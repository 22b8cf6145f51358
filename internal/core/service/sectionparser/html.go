package sectionparser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// clearanceAttr is the data attribute that tags an HTML element with its
// classification level (spec.md §4.4).
const clearanceAttr = "data-clearance"

// HTMLParser implements port.SectionParser for entity.SourceFormatHTML using
// golang.org/x/net/html's tree walker. No HTML parsing library appears in
// the teacher's stack, but x/net/html is the ecosystem-standard choice for
// tolerant HTML5 tree parsing in Go (see SPEC_FULL.md C15).
type HTMLParser struct{}

// NewHTMLParser constructs an HTMLParser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Format reports entity.SourceFormatHTML.
func (p *HTMLParser) Format() entity.SourceFormat {
	return entity.SourceFormatHTML
}

// Parse walks the document tree depth-first, turning every element tagged
// with a recognised data-clearance value into one Section whose content is
// all text beneath it, nested tagged elements included. Content outside such
// elements, including untagged top-level text, becomes no section, and an
// element whose data-clearance value does not parse counts as untagged.
func (p *HTMLParser) Parse(raw []byte, format entity.SourceFormat) (*entity.ParsedDocument, error) {
	root, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("section parser: parse html: %w", err)
	}

	doc := &entity.ParsedDocument{}
	title := extractTitle(root)
	doc.Title = title

	counts := map[entity.ClassificationLevel]int{}
	var overall entity.ClassificationLevel = entity.ClassificationInternal
	index := 0

	var walk func(n *html.Node, inherited entity.ClassificationLevel)
	walk = func(n *html.Node, inherited entity.ClassificationLevel) {
		level := inherited
		var sectionID string
		var tagged bool

		if n.Type == html.ElementNode {
			if raw, ok := attr(n, clearanceAttr); ok {
				parsed, err2 := entity.ParseClassificationLevel(raw)
				if err2 == nil {
					level = parsed
					tagged = true
				}
			}
			if tagged {
				if id, ok := attr(n, "id"); ok && id != "" {
					sectionID = id
				} else {
					sectionID = fmt.Sprintf("section-%d", index)
				}
				index++
				content := strings.TrimSpace(collapseWhitespace(textContent(n)))
				doc.Sections = append(doc.Sections, entity.Section{
					SectionID: sectionID,
					Clearance: level,
					Content:   content,
				})
				counts[level]++
				if level.Rank() > overall.Rank() {
					overall = level
				}
				return // don't also descend into nested data-clearance children as separate untagged text
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, level)
		}
	}
	walk(root, entity.ClassificationInternal)

	if len(doc.Sections) == 0 {
		return nil, entity.ErrInputInvalid
	}

	doc.Metadata = entity.SectionMetadataSummary{
		OverallClassification: overall,
		PerLevelCounts:        counts,
		SourceFormat:          entity.SourceFormatHTML,
	}
	return doc, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractTitle(root *html.Node) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(root)
	return title
}
