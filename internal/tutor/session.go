// Package tutor implements the learner session state machine: section and
// question navigation, per-step option shuffling, answer validation, and
// solution reveal. Each transition returns the side effects (notifications,
// render hints) it produced; nothing here touches the UI directly.
package tutor

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kinelab/biomech-tutor/internal/dataset"
	"github.com/kinelab/biomech-tutor/internal/notify"
)

var (
	// ErrNotFound covers unknown sections and question ids.
	ErrNotFound = dataset.ErrNotFound
	// ErrStaleOption marks a click on an option index the current step does
	// not offer, e.g. a late event after the step already advanced. Callers
	// ignore it; state is untouched.
	ErrStaleOption = errors.New("option index out of range")
)

// Session is one learner's session. All transitions serialize on the
// session's own mutex, so distinct sessions proceed in parallel while events
// within a session apply one at a time in arrival order.
type Session struct {
	ID string

	mu       sync.Mutex
	ds       *dataset.Dataset
	rng      *rand.Rand
	relay    *notify.Relay
	state    State
	lastSeen time.Time

	// logf receives data-integrity reports.
	logf func(format string, args ...any)
}

func newSession(id string, ds *dataset.Dataset, rng *rand.Rand, logf func(string, ...any)) *Session {
	s := &Session{
		ID:       id,
		ds:       ds,
		rng:      rng,
		relay:    notify.NewRelay(),
		lastSeen: time.Now(),
		logf:     logf,
	}
	s.resetLocked()
	return s
}

// resetLocked clears everything downstream of the question choice. Calling
// it twice is the same as calling it once.
func (s *Session) resetLocked() {
	s.state.StepIndex = 0
	s.state.Options = nil
	s.state.ShowSolution = false
	s.state.Feedback = ""
	s.state.SubmittedValue = nil
	s.state.SubmittedUnits = UnitsSentinel
}

// Reset clears step progress, feedback, and the submitted answer. Invoked
// automatically whenever the section or question changes.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.resetLocked()
}

// SelectSection switches to a named section, resets downstream state, and
// lands on the section's first question (by row order) if it has any.
func (s *Session) SelectSection(name string) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if !s.ds.HasSection(name) {
		return nil, fmt.Errorf("section %q: %w", name, ErrNotFound)
	}
	s.state.Section = name
	s.state.Question = ""
	s.resetLocked()

	effects := []Effect{
		notifyEffect(s.relay.Show(fmt.Sprintf(msgSectionPicked, name), 3, notify.SeverityMessage)),
	}
	if q, ok := s.ds.FirstQuestion(name); ok {
		s.state.Question = q.MainQuestion
		s.enterStepLocked(q, 0)
		effects = append(effects, renderEffect(RegionQuestionCard), renderEffect(RegionStep))
	}
	return effects, nil
}

// SelectQuestion switches to a main question within the current section and
// resets downstream state.
func (s *Session) SelectQuestion(mainQuestion string) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	q, err := s.ds.Question(s.state.Section, mainQuestion)
	if err != nil {
		return nil, err
	}
	s.state.Question = q.MainQuestion
	s.resetLocked()
	s.enterStepLocked(q, 0)
	return []Effect{renderEffect(RegionQuestionCard), renderEffect(RegionStep)}, nil
}

// EnterStep re-enters step i of the current question, rebuilding and
// reshuffling its option cards. Re-entering the same step yields a fresh
// permutation of the same option set.
func (s *Session) EnterStep(i int) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	q, err := s.currentQuestionLocked()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(q.Steps) {
		return nil, ErrStaleOption
	}
	s.state.StepIndex = i
	s.enterStepLocked(q, i)
	return []Effect{renderEffect(RegionStep)}, nil
}

// enterStepLocked rebuilds the shuffled option list for step i. The final
// step of a question may legitimately have zero cards (numeric-answer step);
// an empty earlier step is a data gap and gets reported.
func (s *Session) enterStepLocked(q *dataset.Question, i int) {
	row := q.Steps[i].Row
	present := row.PresentOptions()
	views := make([]OptionView, 0, len(present))
	for _, o := range present {
		views = append(views, OptionView{
			Display:       o.Text,
			Feedback:      o.Feedback,
			OriginalIndex: o.OriginalIndex,
			IsCorrect:     OptionCorrect(o.OriginalIndex, row.CorrectOption),
		})
	}
	s.rng.Shuffle(len(views), func(a, b int) {
		views[a], views[b] = views[b], views[a]
	})
	s.state.Options = views

	if len(views) == 0 && i < q.LastStep() {
		s.logf("data integrity: step %q of question %q (section %q) has no usable options",
			q.Steps[i].SubQuestion, q.MainQuestion, q.Section)
	}
}

// SelectOption handles a click on the option at a displayed position. The
// lookup goes through the stored shuffled list of the current step, so
// correctness is decided by the option's original index, never by its
// position on screen.
func (s *Session) SelectOption(displayedIndex int) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	q, err := s.currentQuestionLocked()
	if err != nil {
		return nil, err
	}
	if displayedIndex < 0 || displayedIndex >= len(s.state.Options) {
		return nil, ErrStaleOption
	}
	opt := s.state.Options[displayedIndex]

	switch {
	case opt.IsCorrect && s.state.StepIndex < q.LastStep():
		s.state.StepIndex++
		s.enterStepLocked(q, s.state.StepIndex)
		return []Effect{
			notifyEffect(s.relay.Show(MsgNextStep, 3, notify.SeverityMessage)),
			renderEffect(RegionStep),
		}, nil
	case opt.IsCorrect:
		return []Effect{
			notifyEffect(s.relay.Show(MsgFinalAnswer, 3, notify.SeverityMessage)),
		}, nil
	default:
		return []Effect{
			notifyEffect(s.relay.Show(opt.Feedback, 5, notify.SeverityWarning)),
			renderEffect(RegionFeedback),
		}, nil
	}
}

// SubmitAnswer checks a final numeric answer against the current question's
// range and units. A nil value is a no-op that clears feedback. A fully
// correct submission reveals the solution; nothing else mutates progress, so
// retries are unlimited.
func (s *Session) SubmitAnswer(value *float64, units string) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if value == nil {
		s.state.Feedback = ""
		return nil, nil
	}
	q, err := s.currentQuestionLocked()
	if err != nil {
		return nil, nil // no question in play; mirror the no-op contract
	}

	s.state.SubmittedValue = value
	s.state.SubmittedUnits = units

	rep := q.Rep
	if !rep.HasRange() {
		s.logf("data integrity: question %q (section %q) has no min/max answer range",
			q.MainQuestion, q.Section)
	}
	numericOK := NumericInRange(*value, rep.MinValue, rep.MaxValue)
	unitsOK := UnitsMatch(units, rep.Units)

	switch {
	case numericOK && unitsOK:
		s.state.ShowSolution = true
		s.state.Feedback = MsgSolved
		return []Effect{
			notifyEffect(s.relay.Show(MsgSolvedNotify, 5, notify.SeverityMessage)),
			renderEffect(RegionSolution),
		}, nil
	case numericOK:
		s.state.ShowSolution = false
		msg := MsgUnitsWrong
		if units == UnitsSentinel {
			msg = MsgUnitsMissing
		}
		s.state.Feedback = msg
		return []Effect{
			notifyEffect(s.relay.Show(msg, 5, notify.SeverityWarning)),
		}, nil
	default:
		s.state.ShowSolution = false
		s.state.Feedback = MsgOutOfRange
		return []Effect{
			notifyEffect(s.relay.Show(MsgOutOfRange, 5, notify.SeverityWarning)),
		}, nil
	}
}

// Snapshot renders the client-safe view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	snap := Snapshot{
		SessionID:    s.ID,
		Sections:     s.ds.Sections(),
		Section:      s.state.Section,
		Feedback:     s.state.Feedback,
		Notification: s.relay.Current(),
	}
	q, err := s.currentQuestionLocked()
	if err != nil {
		return snap
	}

	qv := &QuestionView{
		MainQuestion:   q.MainQuestion,
		QuestionNumber: q.QuestionNumber,
		Title:          q.Section + " " + q.QuestionNumber,
		FullQuestion:   q.Rep.FullQuestion,
		ImageURL:       q.Rep.ImageURL,
		StepIndex:      s.state.StepIndex,
		UnitsChoices:   append([]string{UnitsSentinel}, s.ds.Units()...),
		SubmittedValue: s.state.SubmittedValue,
		SubmittedUnits: s.state.SubmittedUnits,
		CombinedAnswer: combinedAnswer(s.state.SubmittedValue, s.state.SubmittedUnits),
		ShowSolution:   s.state.ShowSolution,
	}
	for i, st := range q.Steps {
		qv.Steps = append(qv.Steps, StepView{
			Label:       fmt.Sprintf("Step %d", i+1),
			SubQuestion: st.SubQuestion,
			Current:     i == s.state.StepIndex,
		})
	}
	for i, o := range s.state.Options {
		qv.Options = append(qv.Options, OptionCard{
			DisplayedIndex: i,
			Content:        o.Display,
			IsImage:        optionIsImage(o.Display),
		})
	}
	if s.state.ShowSolution {
		qv.Solution = q.Rep.Solution
	}
	snap.Question = qv
	return snap
}

// StateCopy returns a copy of the raw session state, for tests and
// diagnostics. The copy shares no mutable data with the session.
func (s *Session) StateCopy() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Options = append([]OptionView(nil), s.state.Options...)
	if s.state.SubmittedValue != nil {
		v := *s.state.SubmittedValue
		st.SubmittedValue = &v
	}
	return st
}

func (s *Session) currentQuestionLocked() (*dataset.Question, error) {
	if s.state.Section == "" || s.state.Question == "" {
		return nil, fmt.Errorf("no current question: %w", ErrNotFound)
	}
	return s.ds.Question(s.state.Section, s.state.Question)
}

func (s *Session) touchLocked() { s.lastSeen = time.Now() }

// LastSeen reports when the session last processed an event.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
