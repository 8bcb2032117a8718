// Package workflow sequences the qualification session: browse the list,
// fill the form, await the provider's evaluation, show the result, and
// revalidate or reconfigure. One session drives one user's view of the
// record store.
package workflow

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/internal/qualify"
)

// State names a position in the session state machine.
type State string

const (
	StateBrowsing       State = "browsing"
	StateEditing        State = "editing"
	StateAwaitingResult State = "awaiting_result"
	StateShowingResult  State = "showing_result"
	StateEditingConfig  State = "editing_config"
)

// Transition sentinels.
var (
	ErrInvalidTransition  = eris.New("invalid transition")
	ErrUnknownOpportunity = eris.New("unknown opportunity")
	ErrSubmissionPending  = eris.New("a submission is already awaiting its result")
	ErrAbandoned          = eris.New("evaluation abandoned")
)

// Provider is the evaluation collaborator the session suspends on.
type Provider interface {
	Evaluate(ctx context.Context, input model.QualificationInput, weights model.BantWeights) (*model.Evaluation, error)
}

// Session is the qualification workflow state machine. It has no terminal
// state; every failure returns it to a previously reachable state. All
// methods are safe for concurrent use, but the machine itself admits only
// one outstanding submission at a time.
type Session struct {
	mu       sync.Mutex
	records  *qualify.RecordStore
	weights  *qualify.WeightConfig
	provider Provider

	state      State
	selectedID string              // opportunity in view or under edit; "" = new
	current    *model.Evaluation   // evaluation on display in showing_result
	formSeed   *model.QualificationInput
	draft      model.BantWeights   // settings draft in editing_config
	lastErr    error               // user-visible error from the last failed action

	// generation invalidates in-flight submissions when the user navigates
	// away before the provider resolves.
	generation int
}

// NewSession creates a session in the browsing state.
func NewSession(records *qualify.RecordStore, weights *qualify.WeightConfig, provider Provider) *Session {
	return &Session{
		records:  records,
		weights:  weights,
		provider: provider,
		state:    StateBrowsing,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectedID returns the id of the opportunity in view, or "" when the
// session is working on a new one.
func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Current returns the evaluation on display, or nil outside showing_result.
func (s *Session) Current() *model.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// FormSeed returns the input the form should be pre-populated with: the
// most recent submission when revalidating, or the rejected input after a
// failed submission so the user need not retype it.
func (s *Session) FormSeed() *model.QualificationInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formSeed
}

// SettingsDraft returns the weight draft under edit.
func (s *Session) SettingsDraft() model.BantWeights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// LastError returns the user-visible error from the last failed action, or
// nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StartNew moves from browsing to editing a brand-new opportunity.
func (s *Session) StartNew() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBrowsing {
		return eris.Wrapf(ErrInvalidTransition, "startNew from %s", s.state)
	}
	s.state = StateEditing
	s.selectedID = ""
	s.current = nil
	s.formSeed = nil
	s.lastErr = nil
	return nil
}

// Select opens an opportunity's latest evaluation. Selection never leads
// straight to the form; revalidation is an explicit follow-up step.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBrowsing {
		return eris.Wrapf(ErrInvalidTransition, "select from %s", s.state)
	}
	opp, ok := s.records.Get(id)
	if !ok {
		return eris.Wrapf(ErrUnknownOpportunity, "%s", id)
	}
	latest := opp.Latest()
	s.state = StateShowingResult
	s.selectedID = opp.ID
	s.current = &latest.Result
	s.formSeed = nil
	s.lastErr = nil
	return nil
}

// Revalidate moves from a shown result back to the form, pre-populated with
// the opportunity's most recent input.
func (s *Session) Revalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateShowingResult {
		return eris.Wrapf(ErrInvalidTransition, "revalidate from %s", s.state)
	}
	opp, ok := s.records.Get(s.selectedID)
	if !ok {
		return eris.Wrapf(ErrUnknownOpportunity, "%s", s.selectedID)
	}
	latest := opp.Latest()
	s.state = StateEditing
	s.current = nil
	s.formSeed = &latest.Input
	s.lastErr = nil
	return nil
}

// Submit sends the form content to the evaluation provider and, on
// success, records the evaluation and shows it. On provider or parse
// failure the machine returns to editing with the input preserved and
// nothing persisted. The session stays in awaiting_result for the duration
// of the call, which is what rules out a second concurrent submission.
func (s *Session) Submit(ctx context.Context, input model.QualificationInput) error {
	s.mu.Lock()
	if s.state == StateAwaitingResult {
		s.mu.Unlock()
		return ErrSubmissionPending
	}
	if s.state != StateEditing {
		s.mu.Unlock()
		return eris.Wrapf(ErrInvalidTransition, "submit from %s", s.state)
	}
	if err := input.Validate(); err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	s.state = StateAwaitingResult
	s.lastErr = nil
	targetID := s.selectedID
	gen := s.generation
	weights := s.weights.Get()
	s.mu.Unlock()

	// Suspension point: the single outstanding provider call. The lock is
	// not held here so readers can observe awaiting_result and Cancel can
	// abandon the request.
	ev, evalErr := s.provider.Evaluate(ctx, input, weights)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		// The user navigated away while the request was in flight; the
		// result, whatever it was, is discarded.
		zap.L().Info("in-flight evaluation discarded", zap.String("project", input.ProjectName))
		return ErrAbandoned
	}

	if evalErr != nil {
		s.state = StateEditing
		s.selectedID = targetID
		s.formSeed = &input
		s.lastErr = eris.Wrap(evalErr, "evaluation failed, please retry")
		return s.lastErr
	}

	id, err := s.records.RecordEvaluation(ctx, targetID, input, *ev)
	if err != nil {
		s.state = StateEditing
		s.selectedID = targetID
		s.formSeed = &input
		s.lastErr = eris.Wrap(err, "evaluation failed, please retry")
		return s.lastErr
	}

	s.state = StateShowingResult
	s.selectedID = id
	s.current = ev
	s.formSeed = nil
	return nil
}

// OpenSettings moves from browsing to the weight configuration editor,
// seeding the draft from the committed weights.
func (s *Session) OpenSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBrowsing {
		return eris.Wrapf(ErrInvalidTransition, "openSettings from %s", s.state)
	}
	s.state = StateEditingConfig
	s.draft = s.weights.Get()
	s.lastErr = nil
	return nil
}

// ProposeWeight updates one category in the settings draft. Range is
// checked per field; the sum constraint is deferred to SaveSettings.
func (s *Session) ProposeWeight(c model.Category, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditingConfig {
		return eris.Wrapf(ErrInvalidTransition, "proposeWeight from %s", s.state)
	}
	draft, err := s.weights.Propose(s.draft, c, value)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.draft = draft
	s.lastErr = nil
	return nil
}

// SaveSettings commits the draft. On success the session returns to
// browsing; on validation failure it stays in the editor with the error
// surfaced and the committed weights untouched.
func (s *Session) SaveSettings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditingConfig {
		return eris.Wrapf(ErrInvalidTransition, "saveSettings from %s", s.state)
	}
	if err := s.weights.Commit(ctx, s.draft); err != nil {
		s.lastErr = err
		return err
	}
	s.state = StateBrowsing
	s.lastErr = nil
	return nil
}

// Cancel returns to browsing from any state without side effects. An
// in-flight evaluation, if any, is abandoned and its eventual result
// discarded.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = StateBrowsing
	s.selectedID = ""
	s.current = nil
	s.formSeed = nil
	s.lastErr = nil
}
