// Package extract implements the Extractor interface.
// It decodes exam documents from fetched bytes. A JSON body is decoded
// directly; an HTML page is searched for an embedded exam in a
// <script type="application/json"> element, preferring one with id "exam".
package extract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/texpipe/core"
)

//go:embed sample-exam.json
var sampleJSON []byte

// embeddedSelectors are tried in order when the body is HTML.
var embeddedSelectors = []string{
	`script#exam[type="application/json"]`,
	`script[type="application/json"]`,
}

// JSONExtractor decodes exam documents.
type JSONExtractor struct{}

// New creates a JSONExtractor.
func New() *JSONExtractor {
	return &JSONExtractor{}
}

// Extract decodes the exam held in res.
func (e *JSONExtractor) Extract(res *core.FetchResult) (*core.Exam, error) {
	body := bytes.TrimSpace(res.Body)
	if isHTML(res.ContentType, body) {
		var err error
		if body, err = embedded(body); err != nil {
			return nil, fmt.Errorf("%s: %w", res.Source, err)
		}
	}
	exam, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Source, err)
	}
	return exam, nil
}

// Decode parses one exam document.
func Decode(data []byte) (*core.Exam, error) {
	var exam core.Exam
	if err := json.Unmarshal(data, &exam); err != nil {
		return nil, fmt.Errorf("decoding exam: %w", err)
	}
	for i, s := range exam.Questions {
		if s.SectionName == "" {
			return nil, fmt.Errorf("decoding exam: section %d has no section_name", i+1)
		}
	}
	return &exam, nil
}

// Sample returns the built-in sample exam.
func Sample() *core.Exam {
	exam, err := Decode(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded sample exam: %v", err))
	}
	return exam
}

// SampleJSON returns the raw sample exam document.
func SampleJSON() []byte {
	return append([]byte(nil), sampleJSON...)
}

// Count returns the number of questions across all sections.
func Count(exam *core.Exam) int {
	n := 0
	for _, s := range exam.Questions {
		n += len(s.Questions)
	}
	return n
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	return len(body) > 0 && body[0] == '<'
}

func embedded(page []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	for _, sel := range embeddedSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return []byte(strings.TrimSpace(s.Text())), nil
		}
	}
	return nil, fmt.Errorf("no embedded exam document found in HTML")
}
