// Package render provides output renderers for the texpipe pipeline.
// This file implements the HTML renderer. Every other renderer builds on the
// document it produces.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/target"
)

const page = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title></title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; color: #222; }
header.exam dl { display: grid; grid-template-columns: max-content 1fr; gap: .25rem 1rem; }
header.exam dt { font-weight: 600; }
section.section { margin-top: 2rem; }
p.summary { color: #666; }
div.question { border: 1px solid #ddd; border-radius: 6px; padding: .75rem 1rem; margin: .75rem 0; }
div.q-head { display: flex; justify-content: space-between; font-weight: 600; }
span.badge { background: #eef; border-radius: 4px; padding: 0 .5rem; font-weight: 400; }
img.math { vertical-align: middle; max-width: 100%; }
div.q-body[data-render="fallback"] { font-family: ui-monospace, monospace; }
</style>
</head>
<body>
<header class="exam"><h1></h1><dl class="meta"></dl></header>
<main></main>
</body>
</html>`

var (
	selTitle   = cascadia.MustCompile("head > title")
	selHeading = cascadia.MustCompile("header.exam > h1")
	selMeta    = cascadia.MustCompile("header.exam > dl.meta")
	selMain    = cascadia.MustCompile("body > main")
)

// HTMLRenderer writes a standalone HTML page for a rendered exam.
type HTMLRenderer struct {
	// Plain writes each question's plain rendition instead of its
	// typeset content.
	Plain bool

	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Render builds the page and serializes it.
func (r *HTMLRenderer) Render(doc *core.RenderedExam) ([]byte, error) {
	d, err := r.Document(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Nodes[0]); err != nil {
		return nil, fmt.Errorf("serializing HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

// Document builds the page as a goquery document.
func (r *HTMLRenderer) Document(doc *core.RenderedExam) (*goquery.Document, error) {
	if doc == nil || doc.Exam == nil {
		return nil, errNoExam
	}
	d, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	exam := doc.Exam
	d.FindMatcher(selTitle).SetText(exam.Name)
	d.FindMatcher(selHeading).SetText(exam.Name)

	meta := d.FindMatcher(selMeta)
	for _, kv := range headerFields(exam) {
		meta.AppendNodes(textElement(atom.Dt, "", kv[0]), textElement(atom.Dd, "", kv[1]))
	}

	// Question bodies are filled through target.Node, which locks per
	// document.
	var mu sync.Mutex
	body := d.FindMatcher(selMain)
	for _, sec := range doc.Sections {
		node := element(atom.Section, "section")
		node.AppendChild(textElement(atom.H2, "", sec.Section.Title()))
		node.AppendChild(textElement(atom.P, "summary", sectionSummary(sec)))
		if sec.Section.Description != nil && strings.TrimSpace(*sec.Section.Description) != "" {
			desc, err := r.description(*sec.Section.Description)
			if err != nil {
				return nil, err
			}
			node.AppendChild(desc)
		}

		bodies := make([]*html.Node, len(sec.Questions))
		for i, q := range sec.Questions {
			qn := element(atom.Div, "question")
			qn.Attr = append(qn.Attr, html.Attribute{Key: "id", Val: questionID(q)})
			head := element(atom.Div, "q-head")
			head.AppendChild(textElement(atom.Span, "", "Question "+strconv.Itoa(q.Number)))
			head.AppendChild(textElement(atom.Span, "badge", core.MarksLabel(q.Marks)))
			qn.AppendChild(head)
			bodies[i] = element(atom.Div, "q-body")
			qn.AppendChild(bodies[i])
			node.AppendChild(qn)
		}
		body.AppendNodes(node)

		for i, q := range sec.Questions {
			dst := target.NewNode(d.FindNodes(bodies[i]), &mu)
			if r.Plain {
				dst.SetFallback(q.Plain)
				continue
			}
			target.Replay(q.Content, dst)
		}
	}
	return d, nil
}

func (r *HTMLRenderer) description(src string) (*html.Node, error) {
	md := r.md
	if md == nil {
		md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("converting section description: %w", err)
	}
	div := element(atom.Div, "description")
	nodes, err := html.ParseFragment(&buf, div)
	if err != nil {
		return nil, fmt.Errorf("parsing section description: %w", err)
	}
	for _, n := range nodes {
		div.AppendChild(n)
	}
	return div, nil
}

func headerFields(exam *core.Exam) [][2]string {
	var out [][2]string
	if exam.Course != "" {
		out = append(out, [2]string{"Course", exam.Course})
	}
	if exam.StartDate != "" {
		out = append(out, [2]string{"Date", core.FormatDate(exam.StartDate)})
	}
	if exam.TotalTime != "" {
		out = append(out, [2]string{"Duration", duration(exam.TotalTime)})
	}
	out = append(out, [2]string{"Total marks", strconv.FormatFloat(exam.TotalMarks, 'g', -1, 64)})
	if len(exam.Lessons) > 0 {
		out = append(out, [2]string{"Lessons", strings.Join(exam.Lessons, ", ")})
	}
	return out
}

// duration reads a bare number as minutes.
func duration(total string) string {
	if _, err := strconv.Atoi(total); err == nil {
		return total + " minutes"
	}
	return total
}

func sectionSummary(sec core.RenderedSection) string {
	n := len(sec.Questions)
	label := "questions"
	if n == 1 {
		label = "question"
	}
	return fmt.Sprintf("%d %s · %s", n, label, core.MarksLabel(sec.Section.Marks()))
}

func questionID(q core.RenderedQuestion) string {
	if q.QuestionID != "" {
		return "q-" + q.QuestionID
	}
	return "q-" + strconv.Itoa(q.Number)
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func textElement(a atom.Atom, class, text string) *html.Node {
	n := element(a, class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

var errNoExam = errors.New("render: no exam")
