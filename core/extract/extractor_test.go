package extract

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/texpipe/core"
)

const tinyExam = `{
  "name": "Quiz",
  "start_date": "2025-06-28T04:50:00.000Z",
  "total_marks": 2,
  "questions": [
    {"section_name": "short_answer", "description": "Show working.", "questions": [
      {"question_id": "q1", "question_latex": "$x^2$", "marks": 2}
    ]}
  ]
}`

func TestExtractJSON(t *testing.T) {
	exam, err := New().Extract(&core.FetchResult{Source: "quiz.json", Body: []byte(tinyExam)})
	if err != nil {
		t.Fatal(err)
	}
	if exam.Name != "Quiz" || len(exam.Questions) != 1 {
		t.Fatalf("unexpected exam %+v", exam)
	}
	s := exam.Questions[0]
	if s.Description == nil || *s.Description != "Show working." {
		t.Fatalf("description lost: %+v", s)
	}
	if s.Questions[0].QuestionLatex != "$x^2$" {
		t.Fatalf("unexpected latex %q", s.Questions[0].QuestionLatex)
	}
}

func TestExtractEmbeddedInHTML(t *testing.T) {
	page := `<!doctype html><html><head>
<script type="application/json" id="other">{"name":"wrong","questions":[]}</script>
<script type="application/json" id="exam">` + tinyExam + `</script>
</head><body></body></html>`

	exam, err := New().Extract(&core.FetchResult{Source: "page", ContentType: "text/html; charset=utf-8", Body: []byte(page)})
	if err != nil {
		t.Fatal(err)
	}
	if exam.Name != "Quiz" {
		t.Fatalf("expected the #exam block, got %q", exam.Name)
	}
}

func TestExtractErrors(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{"name":`,
		"no section":    `{"questions":[{"questions":[]}]}`,
		"html no block": `<html><body><p>nothing</p></body></html>`,
	}
	for name, body := range cases {
		_, err := New().Extract(&core.FetchResult{Source: name, Body: []byte(body)})
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !strings.Contains(err.Error(), name) {
			t.Errorf("%s: error should name the source, got %v", name, err)
		}
	}
}

func TestSample(t *testing.T) {
	exam := Sample()
	if len(exam.Questions) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(exam.Questions))
	}
	if Count(exam) != 7 {
		t.Fatalf("expected 7 questions, got %d", Count(exam))
	}
	var total float64
	for _, s := range exam.Questions {
		total += s.Marks()
	}
	if total != exam.TotalMarks {
		t.Fatalf("section marks %g do not add up to total %g", total, exam.TotalMarks)
	}
	raw := SampleJSON()
	raw[0] = 'X'
	if SampleJSON()[0] == 'X' {
		t.Fatal("SampleJSON exposed the embedded bytes")
	}
}

func TestGalleryCoversDisplayIndicators(t *testing.T) {
	n := 0
	for _, c := range Gallery() {
		if c.Title == "" || len(c.Examples) == 0 {
			t.Fatalf("empty gallery category %+v", c)
		}
		n += len(c.Examples)
	}
	if n < 10 {
		t.Fatalf("expected a populated gallery, got %d examples", n)
	}
}
