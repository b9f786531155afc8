package tutor

import (
	"strconv"
	"strings"

	"github.com/kinelab/biomech-tutor/internal/notify"
)

// UnitsSentinel is the "no unit selected" placeholder. It never equals a
// dataset unit.
const UnitsSentinel = "Select units"

// Learner-facing message strings.
const (
	MsgNextStep      = "Correct! Moving to next step."
	MsgFinalAnswer   = "Correct! Please enter your final answer."
	MsgSolved        = "Correct! View the complete solution below."
	MsgSolvedNotify  = "Correct! You can now view the complete solution."
	MsgUnitsMissing  = "Your numeric answer is correct! Please select the appropriate units."
	MsgUnitsWrong    = "Your numeric answer is correct, but the units are incorrect. Try again!"
	MsgOutOfRange    = "Try again. Your answer is not within the acceptable range."
	msgSectionPicked = "Section '%s' selected. Let's begin!"
)

// OptionView is a shuffled answer card for the current step. Built fresh on
// every step entry and held until the step changes, so a learner's click
// target stays valid against the order they were shown.
type OptionView struct {
	Display       string
	Feedback      string
	OriginalIndex int // fixed 1..4 position in the dataset row
	IsCorrect     bool
}

// State is one learner session's mutable state. It is owned by Session and
// mutated only through its transition methods.
type State struct {
	Section        string
	Question       string // main_question id, "" when unset
	StepIndex      int
	Options        []OptionView // shuffled options of the current step
	ShowSolution   bool
	Feedback       string
	SubmittedValue *float64
	SubmittedUnits string
}

// Effect is a side-effect request emitted by a state transition: a render
// hint for a UI region or a notification. The presentation layer applies
// them; the core never touches the UI.
type Effect struct {
	Type         EffectType           `json:"type"`
	Region       string               `json:"region,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type EffectType string

const (
	EffectRender EffectType = "render"
	EffectNotify EffectType = "notify"
)

// Render regions, mirroring the areas the UI re-renders.
const (
	RegionQuestionCard = "question-card"
	RegionStep         = "step"
	RegionSolution     = "solution"
	RegionFeedback     = "feedback"
)

func renderEffect(region string) Effect { return Effect{Type: EffectRender, Region: region} }

func notifyEffect(n notify.Notification) Effect {
	return Effect{Type: EffectNotify, Notification: &n}
}

// Snapshot is the client-safe view of a session. It never carries correct
// option indices, answer ranges, or an unsolved question's solution text.
type Snapshot struct {
	SessionID    string               `json:"session_id"`
	Sections     []string             `json:"sections"`
	Section      string               `json:"section,omitempty"`
	Question     *QuestionView        `json:"question,omitempty"`
	Feedback     string               `json:"feedback,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// QuestionView renders the current question card and step panel.
type QuestionView struct {
	MainQuestion   string       `json:"main_question"`
	QuestionNumber string       `json:"question_number"`
	Title          string       `json:"title"`
	FullQuestion   string       `json:"full_question"`
	ImageURL       string       `json:"image_url,omitempty"`
	Steps          []StepView   `json:"steps"`
	StepIndex      int          `json:"step_index"`
	Options        []OptionCard `json:"options"`
	UnitsChoices   []string     `json:"units_choices"`
	SubmittedValue *float64     `json:"submitted_value,omitempty"`
	SubmittedUnits string       `json:"submitted_units"`
	CombinedAnswer string       `json:"combined_answer,omitempty"`
	ShowSolution   bool         `json:"show_solution"`
	Solution       string       `json:"solution,omitempty"`
}

// StepView is one pill in the step navigation.
type StepView struct {
	Label       string `json:"label"`
	SubQuestion string `json:"sub_question"`
	Current     bool   `json:"current"`
}

// OptionCard is one displayed answer choice. Only the displayed index is
// actionable; correctness stays server-side.
type OptionCard struct {
	DisplayedIndex int    `json:"displayed_index"`
	Content        string `json:"content"`
	IsImage        bool   `json:"is_image"`
}

func optionIsImage(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// combinedAnswer formats the numeric+units preview line.
func combinedAnswer(value *float64, units string) string {
	if value == nil {
		return ""
	}
	v := strconv.FormatFloat(*value, 'g', -1, 64)
	if units == UnitsSentinel || units == "" {
		return v + " (no units selected)"
	}
	return v + " " + units
}
