package teller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/internal/runtime"
	"github.com/aretw0/teller/pkg/adapters/memory"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/aretw0/teller/pkg/session"
)

// Engine is the high-level entry point for the Teller library.
// It binds the dialogue runtime to session storage so that hosts only deal
// with messages and replies.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	bank     ports.Banking

	store       ports.StateStore
	locker      ports.DistributedLocker
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	annualRate  float64
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithBank sets the banking backend (default: in-memory demo bank).
func WithBank(bank ports.Banking) Option {
	return func(e *Engine) {
		e.bank = bank
	}
}

// WithStore sets the session store (default: in-memory).
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serializes the turns of a session across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithClassifier sets the intent classification strategy (default: rules).
func WithClassifier(c ports.IntentClassifier) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithClassifier(c))
	}
}

// WithExtractor replaces the entity extractor.
func WithExtractor(x ports.EntityExtractor) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithExtractor(x))
	}
}

// WithResponder sets the responder for general conversation.
func WithResponder(r ports.Responder) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithResponder(r))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAnnualRate sets the rate used for loan simulations.
func WithAnnualRate(rate float64) Option {
	return func(e *Engine) {
		e.annualRate = rate
	}
}

// New initializes a new Teller Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		logger:     logging.NewNop(),
		annualRate: domain.DefaultAnnualRate,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.bank == nil {
		eng.bank = memory.NewDemoBank(memory.WithAnnualRate(eng.annualRate))
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithAnnualRate(eng.annualRate),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	rt, err := runtime.NewEngine(eng.bank, runtimeOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	eng.runtime = rt

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// SessionKey returns the storage key of the conversation msg belongs to:
// the explicit session id, else one per authenticated customer. Anonymous
// messages without a session id have no key and are not persisted.
func SessionKey(msg domain.Message) string {
	if msg.SessionID != "" {
		return msg.SessionID
	}
	if msg.Authenticated() {
		return "user:" + strconv.FormatInt(msg.UserID, 10)
	}
	return ""
}

// ProcessMessage runs one turn of the conversation msg belongs to.
//
// The result always carries a reply for the customer. A non-nil error means
// the session could not be loaded, locked or saved; the reply is then a
// technical-difficulty notice and no banking operation was run.
//
// Confirmed operations are preceded by a checkpoint that closes the flow in
// the store. Once the bank has been called, its outcome is returned even if
// the final save fails: the stored state can no longer replay it.
func (e *Engine) ProcessMessage(ctx context.Context, msg domain.Message) (domain.TurnResult, error) {
	key := SessionKey(msg)
	if key == "" {
		return e.runtime.Process(ctx, domain.NewState(""), msg), nil
	}

	var (
		res           domain.TurnResult
		checkpointed  bool
		checkpointErr error
	)
	err := e.sessions.UpdateWithCheckpoint(ctx, key, func(ctx context.Context, st *domain.State, save session.Checkpoint) error {
		res = e.runtime.ProcessWithCheckpoint(ctx, st, msg, func(ctx context.Context, closed *domain.State) error {
			if err := save(ctx, closed); err != nil {
				checkpointErr = err
				return err
			}
			checkpointed = true
			return nil
		})
		return nil
	})
	switch {
	case checkpointErr != nil:
		e.logger.Error("Session unavailable", "session_id", key, "error", checkpointErr)
		return TechnicalError(), checkpointErr
	case err != nil && checkpointed:
		e.logger.Warn("Session not saved after operation", "session_id", key, "error", err)
		return res, nil
	case err != nil:
		e.logger.Error("Session unavailable", "session_id", key, "error", err)
		return TechnicalError(), err
	}
	return res, nil
}

// TechnicalError is the reply given when the conversation state is unreachable.
func TechnicalError() domain.TurnResult {
	return domain.TurnResult{
		Response: runtime.MsgTechnicalError,
		Intent:   domain.IntentUnknown,
		Entities: domain.Entities{},
	}
}

// Context returns the stored state of a conversation.
func (e *Engine) Context(ctx context.Context, sessionID string) (*domain.State, error) {
	return e.sessions.Load(ctx, sessionID)
}

// Reset forgets a conversation.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Delete(ctx, sessionID)
}

// SimulateLoan runs an amortization simulation at the configured rate.
func (e *Engine) SimulateLoan(ctx context.Context, amount float64, years int) (domain.LoanSimulation, error) {
	return e.bank.SimulateLoan(ctx, amount, years, e.annualRate)
}

// AnnualRate returns the rate used for loan simulations.
func (e *Engine) AnnualRate() float64 {
	return e.annualRate
}

// Sessions returns the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Bank returns the banking backend.
func (e *Engine) Bank() ports.Banking {
	return e.bank
}
