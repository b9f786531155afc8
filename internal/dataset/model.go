package dataset

import (
	"math"
	"strings"
)

// Option is one of the four fixed answer slots on a row. Unused slots are
// blank; text starting with http(s):// refers to an image.
type Option struct {
	Text     string `json:"text"`
	Feedback string `json:"feedback"`
}

// QuestionRow is one record of the question table. Rows sharing
// (Section, MainQuestion) form one question; rows additionally sharing
// SubQuestion form one step of that question.
type QuestionRow struct {
	Section        string    `json:"section"`
	QuestionNumber string    `json:"question_number"`
	MainQuestion   string    `json:"main_question"`
	SubQuestion    string    `json:"sub_question"`
	FullQuestion   string    `json:"full_question"`
	ImageURL       string    `json:"image_url,omitempty"`
	Solution       string    `json:"solution,omitempty"`
	Options        [4]Option `json:"options"`
	CorrectOption  int       `json:"correct_option,omitempty"` // 1..4, 0 when absent
	MinValue       float64   `json:"min_value"`                // NaN when absent
	MaxValue       float64   `json:"max_value"`                // NaN when absent
	Units          string    `json:"units"`
}

// OptionRef is a present (non-blank) option together with its fixed 1-based
// position in the row. Correctness checks always use OriginalIndex.
type OptionRef struct {
	OriginalIndex int
	Text          string
	Feedback      string
}

// PresentOptions filters out blank/placeholder option slots, keeping the
// original 1-based indices.
func (r QuestionRow) PresentOptions() []OptionRef {
	out := make([]OptionRef, 0, 4)
	for i, o := range r.Options {
		if optionBlank(o.Text) {
			continue
		}
		out = append(out, OptionRef{OriginalIndex: i + 1, Text: o.Text, Feedback: o.Feedback})
	}
	return out
}

// HasRange reports whether the row carries a usable numeric answer range.
func (r QuestionRow) HasRange() bool {
	return !math.IsNaN(r.MinValue) && !math.IsNaN(r.MaxValue)
}

func optionBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none":
		return true
	}
	return false
}

// Step is one sub-question of a question. Row is the first dataset row of the
// sub-question group; its options and feedback drive the step.
type Step struct {
	SubQuestion string
	Row         QuestionRow
}

// Question groups the rows of one main question: its steps in order of first
// appearance plus the representative row (the question's first row), which
// supplies the final answer range and units.
type Question struct {
	Section        string
	MainQuestion   string
	QuestionNumber string
	Rep            QuestionRow
	Steps          []Step
}

// LastStep reports the index of the final step.
func (q *Question) LastStep() int { return len(q.Steps) - 1 }
