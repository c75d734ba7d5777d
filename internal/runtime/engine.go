package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
)

// minReplyLength is the shortest general-path reply shown as is.
const minReplyLength = 10

// Engine is the dialogue orchestrator. It is stateless: every call to Process
// receives the session state and mutates it in place, so callers must hold the
// session lock for the duration of the call.
type Engine struct {
	bank       ports.Banking
	classifier ports.IntentClassifier
	extractor  ports.EntityExtractor
	responder  ports.Responder
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	annualRate float64
	flows      map[domain.Intent]*flow
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClassifier sets the intent classification strategy (default: rules).
func WithClassifier(c ports.IntentClassifier) EngineOption {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithExtractor replaces the French entity extractor.
func WithExtractor(x ports.EntityExtractor) EngineOption {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithResponder sets the responder used outside transactional flows.
func WithResponder(r ports.Responder) EngineOption {
	return func(e *Engine) {
		e.responder = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAnnualRate sets the rate used by loan simulations.
func WithAnnualRate(rate float64) EngineOption {
	return func(e *Engine) {
		e.annualRate = rate
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine acting through bank.
func NewEngine(bank ports.Banking, opts ...EngineOption) (*Engine, error) {
	if bank == nil {
		return nil, errors.New("runtime: banking collaborator is required")
	}
	e := &Engine{
		bank:       bank,
		extractor:  nlu.NewExtractor(),
		responder:  StaticResponder{},
		logger:     logging.NewNop(),
		annualRate: domain.DefaultAnnualRate,
		flows:      defaultFlows(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		c, err := nlu.NewRuleClassifier()
		if err != nil {
			return nil, fmt.Errorf("failed to load intent rules: %w", err)
		}
		e.classifier = c
	}
	if e.annualRate < 0 {
		return nil, domain.ErrInvalidRate
	}
	return e, nil
}

// Checkpoint stores a state of the session before a confirmed operation runs.
type Checkpoint func(ctx context.Context, st *domain.State) error

// Process runs one dialogue turn against st.
// It never fails: every problem is answered with a conversational result.
func (e *Engine) Process(ctx context.Context, st *domain.State, msg domain.Message) domain.TurnResult {
	return e.ProcessWithCheckpoint(ctx, st, msg, nil)
}

// ProcessWithCheckpoint is Process for persisted sessions. Before a confirmed
// operation is sent to the bank, the state with the flow already closed is
// handed to checkpoint; the operation only runs once that succeeded, so a
// confirmation can never be replayed.
func (e *Engine) ProcessWithCheckpoint(ctx context.Context, st *domain.State, msg domain.Message, checkpoint Checkpoint) domain.TurnResult {
	t := &turn{state: st, msg: msg, started: e.now(), checkpoint: checkpoint}
	if st.Entities == nil {
		st.Entities = domain.Entities{}
	}

	text, err := SanitizeInput(msg.Text)
	if err != nil {
		reply := MsgUnreadableInput
		if errors.Is(err, domain.ErrEmptyMessage) {
			reply = MsgEmptyInput
		}
		e.logger.Debug("message rejected", "session_id", st.SessionID, "error", err)
		res := domain.TurnResult{
			Response:       reply,
			Intent:         st.CurrentIntent,
			Entities:       st.Entities.Clone(),
			ActionRequired: st.Active(),
		}
		e.emitTurn(ctx, t, res)
		return res
	}
	t.text = text

	// A session reused under another identity must not resume a flow that
	// collected slots for someone else. Signing in mid-flow is fine.
	if st.Active() && st.UserID != 0 && st.UserID != msg.UserID {
		e.endFlow(ctx, t, domain.OutcomeSuperseded)
	}
	st.UserID = msg.UserID

	t.class = e.classifier.Classify(text)
	t.extracted = e.extractor.Extract(text)

	if e.switchesFlow(t) {
		if st.Active() {
			e.endFlow(ctx, t, domain.OutcomeSuperseded)
		}
		st.Begin(t.class.Intent)
	}

	var res domain.TurnResult
	if f, ok := e.flows[st.CurrentIntent]; ok {
		t.changed = mergeEntities(st.Entities, t.extracted)
		intent := st.CurrentIntent
		reply, actionRequired := e.run(ctx, t, f)
		res = domain.TurnResult{
			Response:       reply,
			Intent:         intent,
			Entities:       st.Entities.Clone(),
			ActionRequired: actionRequired,
			Confidence:     t.class.Confidence,
		}
	} else {
		// Conversational intents are answered in one turn.
		st.Reset()
		res = domain.TurnResult{
			Response:   e.reply(ctx, t),
			Intent:     t.class.Intent,
			Entities:   t.extracted.Clone(),
			Confidence: t.class.Confidence,
		}
	}

	st.Touch(e.now())
	e.emitTurn(ctx, t, res)
	return res
}

// slotStripper is implemented by extractors that can remove the slot values
// they recognize from a message.
type slotStripper interface {
	Strip(text string) string
}

// switchesFlow reports whether the turn starts a new flow. A message that
// answers the active flow only switches when what is left once its slot
// values are removed still asks for another operation: "compte 12",
// "500 TND à Heykel" or "oui merci" stay in the flow whatever the classifier
// makes of them.
func (e *Engine) switchesFlow(t *turn) bool {
	st := t.state
	intent := t.class.Intent
	if intent.IsCatchAll() || intent == st.CurrentIntent {
		return false
	}
	f, ok := e.flows[st.CurrentIntent]
	if !ok || !answersFlow(f, st, t.extracted) {
		return true
	}
	stripper, ok := e.extractor.(slotStripper)
	if !ok {
		return true
	}
	rest := e.classifier.Classify(stripper.Strip(t.text)).Intent
	_, operation := e.flows[rest]
	return operation && rest != st.CurrentIntent
}

// answersFlow reports whether extracted fills a slot f needs or answers its
// pending confirmation.
func answersFlow(f *flow, st *domain.State, extracted domain.Entities) bool {
	if st.Entities.Bool(domain.SlotConfirmationPending) && extracted.Has(domain.SlotConfirmation) {
		return true
	}
	for _, s := range f.required {
		if extracted.Has(s.name) {
			return true
		}
	}
	return false
}

// mergeEntities overwrites dst with src and returns the slots whose value changed.
func mergeEntities(dst, src domain.Entities) map[string]bool {
	changed := make(map[string]bool, len(src))
	for k, v := range src {
		if old, ok := dst[k]; !ok || fmt.Sprint(old) != fmt.Sprint(v) {
			changed[k] = true
		}
	}
	dst.Merge(src)
	return changed
}

// reply answers messages outside any transactional flow.
func (e *Engine) reply(ctx context.Context, t *turn) string {
	switch t.class.Intent {
	case domain.IntentGreeting:
		return MsgGreeting
	case domain.IntentGoodbye:
		return MsgGoodbye
	case domain.IntentAssistance:
		return MsgAssistance
	}
	if t.extracted.Has(domain.SlotConfirmation) {
		return MsgNothingPending
	}

	text, err := e.responder.Reply(ctx, ports.ReplyRequest{
		Text:   t.text,
		Intent: t.class.Intent,
		UserID: t.msg.UserID,
	})
	if err != nil {
		e.logger.Warn("responder failed", "session_id", t.state.SessionID, "error", err)
		return MsgClarify
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minReplyLength {
		return MsgClarify
	}
	return text
}

// accountList fetches the customer's accounts once per turn.
func (e *Engine) accountList(ctx context.Context, t *turn) (domain.AccountList, error) {
	if t.accounts != nil {
		return *t.accounts, nil
	}
	var list domain.AccountList
	err := e.call(ctx, t, "accounts", func(ctx context.Context) (err error) {
		list, err = e.bank.Accounts(ctx, t.msg.UserID)
		return err
	})
	if err != nil {
		return domain.AccountList{}, err
	}
	t.accounts = &list
	return list, nil
}

// call invokes one banking operation, logging and reporting it.
func (e *Engine) call(ctx context.Context, t *turn, op string, fn func(context.Context) error) error {
	start := e.now()
	err := fn(ctx)
	elapsed := e.now().Sub(start)

	if err != nil {
		e.logger.Warn("banking operation failed",
			"session_id", t.state.SessionID, "user_id", t.msg.UserID, "operation", op, "error", err)
	} else {
		e.logger.Info("banking operation",
			"session_id", t.state.SessionID, "user_id", t.msg.UserID, "operation", op)
	}

	if e.hooks.OnOperation != nil {
		e.hooks.OnOperation(ctx, &domain.OperationEvent{
			EventBase: e.base(domain.EventOperation, t),
			Operation: op,
			Duration:  elapsed,
			Err:       err,
		})
	}
	return err
}

// endFlow returns the session to idle and reports how the flow ended.
func (e *Engine) endFlow(ctx context.Context, t *turn, outcome domain.FlowOutcome) {
	intent := t.state.CurrentIntent
	t.state.Reset()

	e.logger.Debug("flow ended", "session_id", t.state.SessionID, "intent", intent, "outcome", outcome)
	if e.hooks.OnFlowEnd != nil {
		e.hooks.OnFlowEnd(ctx, &domain.FlowEvent{
			EventBase: e.base(domain.EventFlowEnd, t),
			Intent:    intent,
			Outcome:   outcome,
		})
	}
}

func (e *Engine) emitTurn(ctx context.Context, t *turn, res domain.TurnResult) {
	e.logger.Debug("turn processed",
		"session_id", t.state.SessionID, "intent", res.Intent, "action_required", res.ActionRequired)
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase:      e.base(domain.EventTurn, t),
			Intent:         res.Intent,
			Confidence:     res.Confidence,
			ActionRequired: res.ActionRequired,
			Duration:       e.now().Sub(t.started),
		})
	}
}

func (e *Engine) base(typ domain.EventType, t *turn) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: typ, SessionID: t.state.SessionID}
}
