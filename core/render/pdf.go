// Package render: PDF renderer.
// Writes the exam with gofpdf. PDF has no way to place engine output inline
// with text, so every question is written as its plain rendition.
package render

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/texpipe/core"
)

// PDFRenderer renders an exam as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes doc into PDF bytes.
func (r *PDFRenderer) Render(doc *core.RenderedExam) ([]byte, error) {
	if doc == nil || doc.Exam == nil {
		return nil, errNoExam
	}
	exam := doc.Exam

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(exam.Name, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// The core fonts are cp1252; anything outside it prints as '?'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	renderHeading(pdf, tr(exam.Name), 1)

	for _, kv := range headerFields(exam) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 5, tr(kv[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(kv[1]), "", "L", false)
	}
	pdf.Ln(4)

	for _, sec := range doc.Sections {
		renderHeading(pdf, tr(sec.Section.Title()), 2)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, tr(strings.ReplaceAll(sectionSummary(sec), "·", "-")), "", "L", false)
		pdf.SetTextColor(0, 0, 0)

		if sec.Section.Description != nil {
			pdf.SetFont("Helvetica", "", 10)
			for _, line := range strings.Split(*sec.Section.Description, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
			}
		}
		pdf.Ln(2)

		for _, q := range sec.Questions {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, tr("Question "+strconv.Itoa(q.Number)+" ("+core.MarksLabel(q.Marks)+")"), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 5, tr(q.Plain), "", "L", true)
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 14, 3: 12}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(2)
}

var (
	reEmphasis = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	reCode     = regexp.MustCompile("`([^`]+)`")
	reLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// cleanInlineMarkdown strips inline Markdown formatting from a description
// line.
func cleanInlineMarkdown(text string) string {
	text = strings.TrimLeft(strings.TrimSpace(text), "#")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = reEmphasis.ReplaceAllString(text, " $1 ")
	text = reCode.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
