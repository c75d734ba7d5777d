package teller_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/pkg/adapters/memory"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "abc", teller.SessionKey(domain.Message{SessionID: "abc", UserID: 1}))
	assert.Equal(t, "user:42", teller.SessionKey(domain.Message{UserID: 42}))
	assert.Empty(t, teller.SessionKey(domain.Message{}))
}

func TestFacade_TransferAgainstDemoBank(t *testing.T) {
	bank := memory.NewDemoBank()
	eng, err := teller.New(teller.WithBank(bank))
	require.NoError(t, err)

	ctx := context.Background()
	say := func(text string) domain.TurnResult {
		t.Helper()
		res, err := eng.ProcessMessage(ctx, domain.Message{SessionID: "web-1", UserID: 1, Text: text})
		require.NoError(t, err)
		return res
	}

	res := say("Je veux faire un virement de 200 TND à Ahmed")
	assert.Equal(t, domain.IntentTransfer, res.Intent)
	assert.Contains(t, res.Response, "De quel compte")

	res = say("compte 1")
	assert.Contains(t, res.Response, "Confirmez-vous ? (oui/non)")

	st, err := eng.Context(ctx, "web-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentTransfer, st.CurrentIntent)
	assert.True(t, st.Entities.Bool(domain.SlotConfirmationPending))

	res = say("oui")
	assert.Contains(t, res.Response, "✅ Virement de 200.000 TND vers Ahmed effectué avec succès.")
	assert.Contains(t, res.Response, "15,220.750 TND")

	transfers := bank.Transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, "Ahmed Ben Salah", transfers[0].BeneficiaryName)

	st, err = eng.Context(ctx, "web-1")
	require.NoError(t, err)
	assert.False(t, st.Active())
	assert.Equal(t, 3, st.Turns)
}

func TestFacade_AuthenticatedWithoutSessionID(t *testing.T) {
	eng, err := teller.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = eng.ProcessMessage(ctx, domain.Message{UserID: 2, Text: "Je veux retirer de l'argent"})
	require.NoError(t, err)

	st, err := eng.Context(ctx, "user:2")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentWithdrawal, st.CurrentIntent)

	require.NoError(t, eng.Reset(ctx, "user:2"))
	_, err = eng.Context(ctx, "user:2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestFacade_AnonymousIsTransient(t *testing.T) {
	store := memory.NewStore()
	eng, err := teller.New(teller.WithStore(store))
	require.NoError(t, err)

	res, err := eng.ProcessMessage(context.Background(), domain.Message{Text: "Simule un crédit de 10000 TND sur 2 ans"})
	require.NoError(t, err)
	assert.Contains(t, res.Response, "Simulation de crédit")

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

type brokenStore struct{ *memory.Store }

func (brokenStore) Save(context.Context, string, *domain.State) error {
	return errors.New("disk full")
}

func TestFacade_StoreFailure(t *testing.T) {
	eng, err := teller.New(teller.WithStore(brokenStore{memory.NewStore()}))
	require.NoError(t, err)

	res, err := eng.ProcessMessage(context.Background(), domain.Message{SessionID: "s1", Text: "Bonjour"})
	require.Error(t, err)
	assert.Equal(t, teller.TechnicalError(), res)
	assert.Contains(t, res.Response, "difficulté technique")
}

// flakyStore fails the saves whose 1-based sequence number is listed.
type flakyStore struct {
	*memory.Store
	mu     sync.Mutex
	saves  int
	failOn map[int]bool
}

func (s *flakyStore) Save(ctx context.Context, id string, st *domain.State) error {
	s.mu.Lock()
	s.saves++
	fail := s.failOn[s.saves]
	s.mu.Unlock()
	if fail {
		return errors.New("redis timeout")
	}
	return s.Store.Save(ctx, id, st)
}

func startTransfer(t *testing.T, eng *teller.Engine) func(string) (domain.TurnResult, error) {
	t.Helper()
	say := func(text string) (domain.TurnResult, error) {
		return eng.ProcessMessage(context.Background(), domain.Message{SessionID: "web-2", UserID: 1, Text: text})
	}
	_, err := say("Je veux faire un virement de 200 TND à Ahmed")
	require.NoError(t, err)
	res, err := say("compte 1")
	require.NoError(t, err)
	require.Contains(t, res.Response, "Confirmez-vous ? (oui/non)")
	return say
}

func TestFacade_SaveFailureAfterTransferDoesNotReplay(t *testing.T) {
	bank := memory.NewDemoBank()
	// Saves 1 and 2 belong to the first two turns, 3 is the checkpoint of
	// the "oui" turn and 4 its final save.
	store := &flakyStore{Store: memory.NewStore(), failOn: map[int]bool{4: true}}
	eng, err := teller.New(teller.WithBank(bank), teller.WithStore(store))
	require.NoError(t, err)
	say := startTransfer(t, eng)

	res, err := say("oui")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "✅ Virement de 200.000 TND vers Ahmed effectué avec succès.")
	require.Len(t, bank.Transfers(), 1)

	res, err = say("oui")
	require.NoError(t, err)
	assert.Equal(t, "Aucune opération en cours.", res.Response)
	assert.Len(t, bank.Transfers(), 1)
}

func TestFacade_CheckpointFailureSkipsTransfer(t *testing.T) {
	bank := memory.NewDemoBank()
	store := &flakyStore{Store: memory.NewStore(), failOn: map[int]bool{3: true}}
	eng, err := teller.New(teller.WithBank(bank), teller.WithStore(store))
	require.NoError(t, err)
	say := startTransfer(t, eng)

	res, err := say("oui")
	require.Error(t, err)
	assert.Equal(t, teller.TechnicalError(), res)
	assert.Empty(t, bank.Transfers())

	st, err := eng.Context(context.Background(), "web-2")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentTransfer, st.CurrentIntent)
	assert.True(t, st.Entities.Bool(domain.SlotConfirmationPending))
	assert.False(t, st.Entities.Has(domain.SlotConfirmation))

	res, err = say("oui")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "✅ Virement de 200.000 TND")
	assert.Len(t, bank.Transfers(), 1)
}

func TestFacade_Hooks(t *testing.T) {
	var mu sync.Mutex
	var turns, ops []string
	hooks := domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			mu.Lock()
			defer mu.Unlock()
			turns = append(turns, e.SessionID)
		},
		OnOperation: func(_ context.Context, e *domain.OperationEvent) {
			mu.Lock()
			defer mu.Unlock()
			ops = append(ops, e.Operation)
		},
	}
	eng, err := teller.New(teller.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	_, err = eng.ProcessMessage(context.Background(), domain.Message{SessionID: "h1", UserID: 1, Text: "Quel est mon solde ?"})
	require.NoError(t, err)

	assert.Equal(t, []string{"h1"}, turns)
	assert.Equal(t, []string{"accounts"}, ops)
}

func TestFacade_SimulateLoan(t *testing.T) {
	eng, err := teller.New(teller.WithAnnualRate(0.05))
	require.NoError(t, err)

	sim, err := eng.SimulateLoan(context.Background(), 10000, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.05, sim.AnnualRate)
	assert.Equal(t, domain.MonthlyPayment(10000, 2, 0.05), sim.MonthlyPayment)

	_, err = teller.New(teller.WithAnnualRate(-1))
	assert.Error(t, err)
}

func TestFacade_ConcurrentTurnsOnOneSession(t *testing.T) {
	eng, err := teller.New()
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.ProcessMessage(ctx, domain.Message{SessionID: "busy", Text: "Bonjour"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := eng.Context(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, 10, st.Turns)
}
