package render

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/texpipe/core"
)

// MarkdownRenderer converts the plain HTML page into Markdown. Typeset
// images would become unreadable data URIs, so math is always written as
// its plain rendition.
type MarkdownRenderer struct {
	html *HTMLRenderer
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	h := NewHTMLRenderer()
	h.Plain = true
	return &MarkdownRenderer{html: h}
}

// Render returns the exam as Markdown.
func (r *MarkdownRenderer) Render(doc *core.RenderedExam) ([]byte, error) {
	d, err := r.html.Document(doc)
	if err != nil {
		return nil, err
	}
	// The stylesheet would otherwise leak into the output as text.
	d.Find("head").Remove()

	page, err := d.Html()
	if err != nil {
		return nil, fmt.Errorf("serializing HTML: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(page)
	if err != nil {
		return nil, fmt.Errorf("converting to markdown: %w", err)
	}
	return []byte(md + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
