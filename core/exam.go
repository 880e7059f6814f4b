package core

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Question is a single exam question. Only QuestionLatex is fed to the
// render pipeline; the rest is carried through unchanged.
type Question struct {
	QuestionID    string  `json:"question_id"`
	QuestionLatex string  `json:"question_latex"`
	Marks         float64 `json:"marks"`
}

// Section groups questions under a heading.
type Section struct {
	SectionName string     `json:"section_name"`
	Description *string    `json:"description"`
	Questions   []Question `json:"questions"`
}

// Exam is the exam document consumed upstream of the render core.
type Exam struct {
	Name       string    `json:"name"`
	Course     string    `json:"course"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalTime  string    `json:"total_time"`
	TotalMarks float64   `json:"total_marks"`
	Lessons    []string  `json:"lessons"`
	Questions  []Section `json:"questions"`
}

// Title returns the display heading for a section, e.g. "Short Answer Section".
func (s Section) Title() string {
	name := strings.Replace(s.SectionName, "_", " ", 1)
	return cases.Title(language.English).String(name) + " Section"
}

// Marks sums the marks of every question in the section.
func (s Section) Marks() float64 {
	var total float64
	for _, q := range s.Questions {
		total += q.Marks
	}
	return total
}

// MarksLabel renders a mark count the way question badges show it.
func MarksLabel(marks float64) string {
	if marks == 1 {
		return "1 mark"
	}
	return fmt.Sprintf("%g marks", marks)
}

// FormatDate renders an RFC 3339 timestamp for headers. Unparseable input
// is returned unchanged.
func FormatDate(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("January 2, 2006 03:04 PM")
}

// RenderedQuestion pairs a question with the outcome of rendering it.
type RenderedQuestion struct {
	Question
	Number  int         `json:"number"`
	Mode    MathMode    `json:"mode"`
	Wrapped string      `json:"wrapped"`
	State   RenderState `json:"state"`
	Content Content     `json:"-"`
	// Plain is the fallback rendition of Wrapped, used by outputs that
	// cannot embed engine output.
	Plain string `json:"plain"`
}

// RenderedSection is a section whose questions have been rendered.
type RenderedSection struct {
	Section   Section
	Questions []RenderedQuestion
}

// RenderedExam is the input to every output Renderer.
type RenderedExam struct {
	Source     string
	Exam       *Exam
	Sections   []RenderedSection
	RenderedAt time.Time
}
