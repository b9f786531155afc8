// Package dataset holds the immutable question table and the derived
// section/question/step index. It is loaded once at startup and shared
// read-only across all sessions.
package dataset

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for unknown sections or question ids.
var ErrNotFound = errors.New("not found")

// Problem is a data-integrity finding from indexing. Problems are reported to
// the operator; the dataset still serves with whatever is usable.
type Problem struct {
	Section      string
	MainQuestion string
	SubQuestion  string
	Reason       string
}

func (p Problem) String() string {
	if p.SubQuestion != "" {
		return fmt.Sprintf("%s/%s/%s: %s", p.Section, p.MainQuestion, p.SubQuestion, p.Reason)
	}
	return fmt.Sprintf("%s/%s: %s", p.Section, p.MainQuestion, p.Reason)
}

// Dataset is the indexed, immutable question table.
type Dataset struct {
	sections  []string
	questions map[string][]*Question // section -> ordered questions
	byID      map[string]*Question   // section + "\x00" + mainQuestion
	units     []string
}

// New indexes rows in order. Rows with a blank section are expected to have
// been dropped by the source already; any that slip through are ignored here
// too. The returned problems are advisory.
func New(rows []QuestionRow) (*Dataset, []Problem) {
	d := &Dataset{
		questions: map[string][]*Question{},
		byID:      map[string]*Question{},
	}
	var problems []Problem
	seenUnits := map[string]bool{}

	for _, r := range rows {
		if r.Section == "" {
			continue
		}
		if _, ok := d.questions[r.Section]; !ok {
			d.sections = append(d.sections, r.Section)
			d.questions[r.Section] = nil
		}
		key := r.Section + "\x00" + r.MainQuestion
		q, ok := d.byID[key]
		if !ok {
			q = &Question{
				Section:        r.Section,
				MainQuestion:   r.MainQuestion,
				QuestionNumber: r.QuestionNumber,
				Rep:            r,
			}
			d.byID[key] = q
			d.questions[r.Section] = append(d.questions[r.Section], q)
		}
		if !stepKnown(q, r.SubQuestion) {
			q.Steps = append(q.Steps, Step{SubQuestion: r.SubQuestion, Row: r})
		}
		if r.Units != "" && !seenUnits[r.Units] {
			seenUnits[r.Units] = true
			d.units = append(d.units, r.Units)
		}
	}

	for _, sec := range d.sections {
		for _, q := range d.questions[sec] {
			problems = append(problems, checkQuestion(q)...)
		}
	}
	return d, problems
}

func stepKnown(q *Question, sub string) bool {
	for _, s := range q.Steps {
		if s.SubQuestion == sub {
			return true
		}
	}
	return false
}

func checkQuestion(q *Question) []Problem {
	var out []Problem
	if !q.Rep.HasRange() {
		out = append(out, Problem{Section: q.Section, MainQuestion: q.MainQuestion,
			Reason: "missing min/max answer range"})
	}
	if q.Rep.Units == "" {
		out = append(out, Problem{Section: q.Section, MainQuestion: q.MainQuestion,
			Reason: "missing answer units"})
	}
	if q.Rep.HasRange() && q.Rep.MinValue > q.Rep.MaxValue {
		out = append(out, Problem{Section: q.Section, MainQuestion: q.MainQuestion,
			Reason: "min_value greater than max_value"})
	}
	// The final step is the numeric-answer step and legitimately has no
	// option cards; earlier steps need at least one.
	for i, s := range q.Steps {
		if i == len(q.Steps)-1 {
			continue
		}
		if len(s.Row.PresentOptions()) == 0 {
			out = append(out, Problem{Section: q.Section, MainQuestion: q.MainQuestion,
				SubQuestion: s.SubQuestion, Reason: "step has no usable options"})
		}
	}
	return out
}

// Sections lists section names in first-seen row order.
func (d *Dataset) Sections() []string { return d.sections }

// HasSection reports whether name is a known section.
func (d *Dataset) HasSection(name string) bool {
	_, ok := d.questions[name]
	return ok
}

// Questions lists a section's questions in first-seen row order.
func (d *Dataset) Questions(section string) ([]*Question, error) {
	qs, ok := d.questions[section]
	if !ok {
		return nil, fmt.Errorf("section %q: %w", section, ErrNotFound)
	}
	return qs, nil
}

// Question resolves a main-question id within a section.
func (d *Dataset) Question(section, mainQuestion string) (*Question, error) {
	q, ok := d.byID[section+"\x00"+mainQuestion]
	if !ok {
		return nil, fmt.Errorf("question %q in section %q: %w", mainQuestion, section, ErrNotFound)
	}
	return q, nil
}

// FirstQuestion returns a section's first question by row order, if any.
func (d *Dataset) FirstQuestion(section string) (*Question, bool) {
	qs := d.questions[section]
	if len(qs) == 0 {
		return nil, false
	}
	return qs[0], true
}

// Units lists the distinct unit strings of the dataset in first-seen order.
// The "no selection" sentinel is not part of the dataset and never appears.
func (d *Dataset) Units() []string { return d.units }
