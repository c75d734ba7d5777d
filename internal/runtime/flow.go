package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/teller/pkg/domain"
)

// slot is a required slot of a flow, in prompt order.
type slot struct {
	name    string
	prompt  string
	account bool
}

// flow is the slot-filling state machine of one transactional intent.
type flow struct {
	intent   domain.Intent
	auth     bool
	authText string
	confirm  bool
	required []slot

	// failure prefixes the collaborator error shown when execute fails.
	failure string

	// restate describes the pending operation. Only called for confirm flows,
	// after the account slot has been checked against the customer's accounts.
	restate func(t *turn) string
	execute func(ctx context.Context, e *Engine, t *turn) (string, error)
}

func (f *flow) requires(name string) bool {
	for _, s := range f.required {
		if s.name == name {
			return true
		}
	}
	return false
}

func (f *flow) accountSlot() (slot, bool) {
	for _, s := range f.required {
		if s.account {
			return s, true
		}
	}
	return slot{}, false
}

// turn carries everything known about the message being processed.
type turn struct {
	state     *domain.State
	msg       domain.Message
	text      string
	class     domain.Classification
	extracted domain.Entities
	changed   map[string]bool
	started   time.Time

	accounts *domain.AccountList
	account  domain.Account

	checkpoint Checkpoint
}

func (t *turn) requiredChanged(f *flow) bool {
	for _, s := range f.required {
		if t.changed[s.name] {
			return true
		}
	}
	return false
}

// run advances f by one turn and returns the response and whether a specific
// answer is expected next.
func (e *Engine) run(ctx context.Context, t *turn, f *flow) (string, bool) {
	st := t.state

	if f.auth && !t.msg.Authenticated() {
		e.endFlow(ctx, t, domain.OutcomeUnauthenticated)
		return f.authText, false
	}

	if c, ok := st.Entities.Confirmation(); ok && c == domain.ConfirmNo {
		e.endFlow(ctx, t, domain.OutcomeCancelled)
		return MsgCancelled, false
	}

	notice := validateSlots(st.Entities, f)

	for _, s := range f.required {
		if st.Entities.Has(s.name) {
			continue
		}
		st.Entities.Drop(domain.SlotConfirmation, domain.SlotConfirmationPending)
		if !s.account {
			return notice + s.prompt, true
		}
		list, err := e.accountList(ctx, t)
		if err != nil {
			return MsgAccountsDown, true
		}
		return notice + s.prompt + "\n" + formatAccounts(list.Accounts) + MsgAccountHint, true
	}

	if !f.confirm {
		return e.execute(ctx, t, f)
	}

	pending := st.Entities.Bool(domain.SlotConfirmationPending)
	answer, answered := st.Entities.Confirmation()
	changed := t.requiredChanged(f)
	if pending && answered && answer == domain.ConfirmYes && !changed {
		return e.execute(ctx, t, f)
	}

	// Anything else (re)states the operation. A yes that arrives before the
	// customer has seen the restatement is discarded.
	st.Entities.Drop(domain.SlotConfirmation)
	if text, ok := e.checkOwnership(ctx, t, f); !ok {
		return notice + text, true
	}
	st.Entities[domain.SlotConfirmationPending] = true

	text := f.restate(t)
	if pending && !changed {
		text = MsgAnswerYesNo + "\n\n" + text
	}
	return notice + text, true
}

// checkOwnership makes sure the account slot of f names one of the customer's
// accounts. On failure the account slots are dropped and the account prompt is
// returned.
func (e *Engine) checkOwnership(ctx context.Context, t *turn, f *flow) (string, bool) {
	s, ok := f.accountSlot()
	if !ok {
		return "", true
	}
	id, _ := t.state.Entities.Int(s.name)

	list, err := e.accountList(ctx, t)
	if err != nil {
		return MsgAccountsDown, false
	}
	if account, found := list.Find(id); found {
		t.account = account
		return "", true
	}

	t.state.Entities.Drop(domain.SlotFromAccount, domain.SlotToAccount, domain.SlotConfirmationPending)
	return fmt.Sprintf("⚠️ Le compte n°%d ne figure pas parmi vos comptes.\n", id) +
		s.prompt + "\n" + formatAccounts(list.Accounts) + MsgAccountHint, false
}

func (e *Engine) execute(ctx context.Context, t *turn, f *flow) (string, bool) {
	if f.confirm && t.checkpoint != nil {
		closed := t.state.Snapshot()
		closed.Reset()
		closed.Touch(e.now())
		if err := t.checkpoint(ctx, closed); err != nil {
			e.logger.Error("failed to checkpoint confirmed operation",
				"session_id", t.state.SessionID, "intent", f.intent, "error", err)
			// The customer has to confirm again once the store is back.
			t.state.Entities.Drop(domain.SlotConfirmation)
			return MsgTechnicalError, true
		}
	}

	text, err := f.execute(ctx, e, t)
	if err != nil {
		e.endFlow(ctx, t, domain.OutcomeFailed)
		return fmt.Sprintf("❌ %s : %s", f.failure, err.Error()), false
	}
	e.endFlow(ctx, t, domain.OutcomeCompleted)
	return text, false
}

// validateSlots drops out-of-range values of the slots f requires and returns
// a notice explaining why they are asked again.
func validateSlots(e domain.Entities, f *flow) string {
	var notice string
	if f.requires(domain.SlotAmount) && e.Has(domain.SlotAmount) {
		if v, ok := e.Float(domain.SlotAmount); !ok || v <= 0 {
			e.Drop(domain.SlotAmount)
			notice += "⚠️ " + domain.ErrInvalidAmount.Error() + ".\n"
		}
	}
	if f.requires(domain.SlotYears) && e.Has(domain.SlotYears) {
		if v, ok := e.Int(domain.SlotYears); !ok || v < domain.MinLoanYears || v > domain.MaxLoanYears {
			e.Drop(domain.SlotYears)
			notice += "⚠️ " + domain.ErrInvalidDuration.Error() + ".\n"
		}
	}
	return notice
}
