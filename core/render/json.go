// Package render: JSON renderer.
// Writes the exam together with every question's pipeline result and the
// content its target ended up with.
package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaurav-prasanna/texpipe/core"
)

// JSONRenderer produces structured JSON output.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

type examJSON struct {
	Source     string        `json:"source"`
	RenderedAt time.Time     `json:"rendered_at"`
	Exam       examMetaJSON  `json:"exam"`
	Sections   []sectionJSON `json:"sections"`
	Summary    Summary       `json:"summary"`
}

type examMetaJSON struct {
	Name       string   `json:"name"`
	Course     string   `json:"course"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	TotalTime  string   `json:"total_time"`
	TotalMarks float64  `json:"total_marks"`
	Lessons    []string `json:"lessons"`
}

type sectionJSON struct {
	SectionName string         `json:"section_name"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Marks       float64        `json:"marks"`
	Questions   []questionJSON `json:"questions"`
}

type questionJSON struct {
	core.RenderedQuestion
	Content string        `json:"content"`
	Typeset *core.Typeset `json:"typeset,omitempty"`
}

// Summary counts how the questions of an exam ended up.
type Summary struct {
	Questions int `json:"questions"`
	Rendered  int `json:"rendered"`
	Fallback  int `json:"fallback"`
	Pending   int `json:"pending"`
}

// Summarize counts question states across doc.
func Summarize(doc *core.RenderedExam) Summary {
	var s Summary
	for _, sec := range doc.Sections {
		for _, q := range sec.Questions {
			s.Questions++
			switch q.State {
			case core.Rendered:
				s.Rendered++
			case core.Fallback:
				s.Fallback++
			default:
				s.Pending++
			}
		}
	}
	return s
}

// Render marshals doc into indented JSON.
func (r *JSONRenderer) Render(doc *core.RenderedExam) ([]byte, error) {
	if doc == nil || doc.Exam == nil {
		return nil, errNoExam
	}
	e := doc.Exam
	out := examJSON{
		Source:     doc.Source,
		RenderedAt: doc.RenderedAt,
		Exam: examMetaJSON{
			Name:       e.Name,
			Course:     e.Course,
			StartDate:  e.StartDate,
			EndDate:    e.EndDate,
			TotalTime:  e.TotalTime,
			TotalMarks: e.TotalMarks,
			Lessons:    e.Lessons,
		},
		Sections: make([]sectionJSON, 0, len(doc.Sections)),
		Summary:  Summarize(doc),
	}
	for _, sec := range doc.Sections {
		sj := sectionJSON{
			SectionName: sec.Section.SectionName,
			Title:       sec.Section.Title(),
			Description: sec.Section.Description,
			Marks:       sec.Section.Marks(),
			Questions:   make([]questionJSON, 0, len(sec.Questions)),
		}
		for _, q := range sec.Questions {
			sj.Questions = append(sj.Questions, questionJSON{
				RenderedQuestion: q,
				Content:          q.Content.Kind.String(),
				Typeset:          q.Content.Typeset,
			})
		}
		out.Sections = append(out.Sections, sj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
