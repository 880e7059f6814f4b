package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/texpipe/core"
)

func fixture() *core.RenderedExam {
	desc := "Match **each** number with its type."
	exam := &core.Exam{
		Name:       "Number Systems",
		Course:     "maths-9",
		StartDate:  "2025-06-28T04:50:00.000Z",
		TotalTime:  "20",
		TotalMarks: 3,
		Lessons:    []string{"Real Numbers", "Decimals"},
		Questions: []core.Section{
			{SectionName: "mcq", Questions: []core.Question{
				{QuestionID: "a1", QuestionLatex: `\frac{1}{3}`, Marks: 1},
				{QuestionID: "a2", QuestionLatex: `bad \\ input`, Marks: 2},
			}},
			{SectionName: "short_answer", Description: &desc},
		},
	}
	svg := &core.Typeset{Engine: "canvas", Format: "svg", Data: []byte("<svg/>"), Source: `$$\frac{1}{3}$$`}
	return &core.RenderedExam{
		Source: "exam.json",
		Exam:   exam,
		Sections: []core.RenderedSection{
			{Section: exam.Questions[0], Questions: []core.RenderedQuestion{
				{
					Question: exam.Questions[0].Questions[0],
					Number:   1,
					Mode:     core.Display,
					Wrapped:  `$$\frac{1}{3}$$`,
					State:    core.Rendered,
					Content:  core.Content{Kind: core.ContentTypeset, Typeset: svg},
					Plain:    `\frac{1}{3}`,
				},
				{
					Question: exam.Questions[0].Questions[1],
					Number:   2,
					Mode:     core.Inline,
					Wrapped:  `$bad \\ input$`,
					State:    core.Fallback,
					Content:  core.Content{Kind: core.ContentFallback, Text: "bad\ninput"},
					Plain:    "bad\ninput",
				},
			}},
			{Section: exam.Questions[1]},
		},
		RenderedAt: time.Date(2025, 6, 28, 5, 0, 0, 0, time.UTC),
	}
}

func parse(t *testing.T, data []byte) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not HTML: %v", err)
	}
	return d
}

func TestHTMLRenderer(t *testing.T) {
	r := NewHTMLRenderer()
	data, err := r.Render(fixture())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	d := parse(t, data)

	if got := d.Find("title").Text(); got != "Number Systems" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := d.Find("section.section h2").First().Text(); got != "Mcq Section" {
		t.Fatalf("unexpected section title %q", got)
	}
	if got := d.Find("section.section h2").Last().Text(); got != "Short Answer Section" {
		t.Fatalf("unexpected section title %q", got)
	}
	if got := d.Find("p.summary").First().Text(); got != "2 questions · 3 marks" {
		t.Fatalf("unexpected summary %q", got)
	}
	if d.Find("div.description strong").Text() != "each" {
		t.Fatal("section description was not converted from markdown")
	}
	if !strings.Contains(d.Find("header.exam dl").Text(), "20 minutes") {
		t.Fatalf("missing duration in header: %q", d.Find("header.exam dl").Text())
	}

	first := d.Find("#q-a1 div.q-body")
	if v, _ := first.Attr("data-render"); v != "typeset" {
		t.Fatalf("expected typeset body, got %q", v)
	}
	src, _ := first.Find("img.math").Attr("src")
	if !strings.HasPrefix(src, "data:image/svg+xml;base64,") {
		t.Fatalf("unexpected image source %q", src)
	}
	if got := d.Find("#q-a1 span.badge").Text(); got != "1 mark" {
		t.Fatalf("unexpected badge %q", got)
	}

	second := d.Find("#q-a2 div.q-body")
	if v, _ := second.Attr("data-render"); v != "fallback" {
		t.Fatalf("expected fallback body, got %q", v)
	}
	if second.Find("br").Length() != 1 || second.Text() != "badinput" {
		t.Fatalf("unexpected fallback body %q", second.Text())
	}
}

func TestHTMLRendererPlain(t *testing.T) {
	r := NewHTMLRenderer()
	r.Plain = true
	data, err := r.Render(fixture())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	d := parse(t, data)
	if d.Find("img.math").Length() != 0 {
		t.Fatal("plain output embedded typeset images")
	}
	if got := d.Find("#q-a1 div.q-body").Text(); got != `\frac{1}{3}` {
		t.Fatalf("unexpected plain body %q", got)
	}
}

func TestRenderersRejectMissingExam(t *testing.T) {
	renderers := []core.Renderer{NewHTMLRenderer(), NewMarkdownRenderer(), NewJSONRenderer(), NewPDFRenderer()}
	for _, r := range renderers {
		if _, err := r.Render(&core.RenderedExam{}); err == nil {
			t.Fatalf("%T accepted a document without an exam", r)
		}
	}
}

func TestMarkdownRenderer(t *testing.T) {
	data, err := NewMarkdownRenderer().Render(fixture())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	md := string(data)
	for _, want := range []string{"# Number Systems", "## Mcq Section", "Question 1", "2 marks"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown is missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "data:image") || strings.Contains(md, "font-family") {
		t.Fatalf("markdown leaked page internals:\n%s", md)
	}
}

func TestJSONRenderer(t *testing.T) {
	data, err := NewJSONRenderer().Render(fixture())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var out struct {
		Source   string `json:"source"`
		Sections []struct {
			Title     string `json:"title"`
			Questions []struct {
				QuestionID string `json:"question_id"`
				Mode       string `json:"mode"`
				State      string `json:"state"`
				Content    string `json:"content"`
				Plain      string `json:"plain"`
				Typeset    *struct {
					Format string `json:"format"`
				} `json:"typeset"`
			} `json:"questions"`
		} `json:"sections"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Source != "exam.json" || len(out.Sections) != 2 {
		t.Fatalf("unexpected document %+v", out)
	}
	q := out.Sections[0].Questions
	if q[0].Mode != "display" || q[0].State != "rendered" || q[0].Content != "typeset" || q[0].Typeset == nil || q[0].Typeset.Format != "svg" {
		t.Fatalf("unexpected first question %+v", q[0])
	}
	if q[1].State != "fallback" || q[1].Typeset != nil || q[1].Plain != "bad\ninput" {
		t.Fatalf("unexpected second question %+v", q[1])
	}
	if out.Summary != (Summary{Questions: 2, Rendered: 1, Fallback: 1}) {
		t.Fatalf("unexpected summary %+v", out.Summary)
	}
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer()
	data, err := r.Render(fixture())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
	if r.Extension() != ".pdf" {
		t.Fatalf("unexpected extension %q", r.Extension())
	}
}

func TestCleanInlineMarkdown(t *testing.T) {
	got := cleanInlineMarkdown("## See **this** `code` and [docs](http://x)")
	if got != "See this code and docs" {
		t.Fatalf("unexpected %q", got)
	}
}
