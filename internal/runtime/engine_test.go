package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/internal/runtime"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversation struct {
	t    *testing.T
	eng  *runtime.Engine
	bank *recordingBank
	st   *domain.State
	user int64
}

func newConversation(t *testing.T, user int64, opts ...runtime.EngineOption) *conversation {
	t.Helper()
	bank := newRecordingBank()
	eng, err := runtime.NewEngine(bank, opts...)
	require.NoError(t, err)
	return &conversation{t: t, eng: eng, bank: bank, st: domain.NewState("sess-1"), user: user}
}

func (c *conversation) say(text string) domain.TurnResult {
	c.t.Helper()
	return c.eng.Process(context.Background(), c.st, domain.Message{SessionID: c.st.SessionID, UserID: c.user, Text: text})
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := runtime.NewEngine(nil)
	assert.Error(t, err)

	_, err = runtime.NewEngine(newRecordingBank(), runtime.WithAnnualRate(-0.01))
	assert.ErrorIs(t, err, domain.ErrInvalidRate)
}

func TestEngine_TransferScenario(t *testing.T) {
	for _, strategy := range []nlu.Strategy{nlu.StrategyRules, nlu.StrategyBayes} {
		t.Run(string(strategy), func(t *testing.T) {
			classifier, err := nlu.NewClassifier(strategy)
			require.NoError(t, err)
			c := newConversation(t, customerID, runtime.WithClassifier(classifier))

			res := c.say("Je veux faire un virement")
			assert.Equal(t, domain.IntentTransfer, res.Intent)
			assert.True(t, res.ActionRequired)
			assert.Contains(t, res.Response, "De quel compte souhaitez-vous effectuer le virement ?")
			assert.Contains(t, res.Response, "**Compte Courant** (id 12, n° 0012345678) : 5,000.000 TND")
			assert.Contains(t, res.Response, "**Compte Épargne** (id 13")
			assert.NotContains(t, res.Response, "bénéficiaire")
			assert.Equal(t, []string{"accounts"}, c.bank.Calls())

			res = c.say("compte 12")
			assert.Equal(t, domain.IntentTransfer, res.Intent)
			assert.True(t, res.ActionRequired)
			assert.Contains(t, res.Response, "Quel montant souhaitez-vous virer")
			assert.Equal(t, int64(12), res.Entities[domain.SlotFromAccount])
			assert.NotContains(t, res.Entities, domain.SlotAmount)

			res = c.say("500 TND à Ahmed")
			assert.True(t, res.ActionRequired)
			assert.Contains(t, res.Response, "virement de **500.000 TND** depuis le compte **Compte Courant** (id 12) vers **Ahmed**")
			assert.Contains(t, res.Response, "Confirmez-vous ? (oui/non)")
			assert.Equal(t, true, res.Entities[domain.SlotConfirmationPending])
			assert.Empty(t, c.bank.moneyCalls())

			res = c.say("oui")
			assert.Equal(t, domain.IntentTransfer, res.Intent)
			assert.False(t, res.ActionRequired)
			assert.Contains(t, res.Response, "✅ Virement de 500.000 TND vers Ahmed effectué avec succès.")
			assert.Contains(t, res.Response, "Référence : TRF-0001")
			assert.Contains(t, res.Response, "Nouveau solde : 4,500.000 TND")
			assert.Empty(t, res.Entities)

			require.Len(t, c.bank.transfers, 1)
			assert.Equal(t, domain.TransferRequest{
				UserID:          customerID,
				FromAccountID:   currentAccountID,
				BeneficiaryName: "Ahmed",
				Amount:          500,
			}, c.bank.transfers[0])

			assert.False(t, c.st.Active())
			assert.Empty(t, c.st.Entities)
			assert.Equal(t, 4, c.st.Turns)
		})
	}
}

func TestEngine_SlotAnswersStayInFlow(t *testing.T) {
	for _, strategy := range []nlu.Strategy{nlu.StrategyRules, nlu.StrategyBayes} {
		t.Run(string(strategy), func(t *testing.T) {
			classifier, err := nlu.NewClassifier(strategy)
			require.NoError(t, err)
			c := newConversation(t, customerID, runtime.WithClassifier(classifier))

			c.say("Je veux faire un virement")
			c.say("compte 12")
			res := c.say("500 TND à Heykel")
			assert.Equal(t, domain.IntentTransfer, res.Intent)
			assert.Contains(t, res.Response, "vers **Heykel**")

			c.say("oui")
			require.Len(t, c.bank.transfers, 1)
			assert.Equal(t, "Heykel", c.bank.transfers[0].BeneficiaryName)
		})
	}
}

func TestEngine_CourtesyAroundAnswer(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Je veux déposer 200 TND sur le compte 12")
	res := c.say("oui merci")
	assert.Contains(t, res.Response, "✅")
	assert.Equal(t, []string{"deposit"}, c.bank.moneyCalls())

	// On its own it still ends the conversation.
	c.say("Je veux faire un virement")
	res = c.say("merci")
	assert.Equal(t, domain.IntentGoodbye, res.Intent)
	assert.False(t, c.st.Active())
}

func TestEngine_SlotAnswerCanStillSwitch(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Je veux faire un virement")
	res := c.say("Quel est le solde du compte 12")
	assert.Equal(t, domain.IntentBalance, res.Intent)
	assert.False(t, c.st.Active())
	assert.Empty(t, c.bank.moneyCalls())
}

func TestEngine_AnonymousBalanceNeedsIdentity(t *testing.T) {
	c := newConversation(t, 0)

	res := c.say("Quel est mon solde")
	assert.Equal(t, runtime.MsgAuthToConsult, res.Response)
	assert.Equal(t, domain.IntentBalance, res.Intent)
	assert.False(t, res.ActionRequired)
	assert.Empty(t, c.bank.Calls())
	assert.False(t, c.st.Active())
}

func TestEngine_SimulationInOneMessage(t *testing.T) {
	c := newConversation(t, 0)

	res := c.say("Simule un crédit de 50000 TND sur 7 ans")
	assert.Equal(t, domain.IntentLoanSimulate, res.Intent)
	assert.False(t, res.ActionRequired)
	assert.NotContains(t, res.Response, "Confirmez")
	assert.Contains(t, res.Response, "Simulation de crédit")
	assert.Contains(t, res.Response, "7 ans (84 mensualités)")
	assert.Contains(t, res.Response, "Taux annuel : 7.00 %")

	sim, err := domain.SimulateLoan(50000, 7, domain.DefaultAnnualRate)
	require.NoError(t, err)
	assert.Contains(t, res.Response, "Mensualité : **"+runtime.FormatTND(sim.MonthlyPayment)+"**")
	assert.Contains(t, res.Response, "Intérêts : "+runtime.FormatTND(sim.TotalInterest))

	assert.Equal(t, []string{"simulate_loan"}, c.bank.Calls())
	assert.False(t, c.st.Active())
}

func TestEngine_SimulationUsesConfiguredRate(t *testing.T) {
	c := newConversation(t, 0, runtime.WithAnnualRate(0))

	res := c.say("Simule un crédit de 12000 TND sur 1 an")
	assert.Contains(t, res.Response, "Mensualité : **1,000.000 TND**")
}

func TestEngine_ConfirmationGate(t *testing.T) {
	flows := []struct {
		name    string
		opening string
		op      string
	}{
		{"transfer", "Je veux faire un virement de 300 TND à Sami depuis le compte 12", "transfer"},
		{"deposit", "Je veux déposer 200 TND sur le compte 12", "deposit"},
		{"withdrawal", "Retirer 100 TND du compte 12", "withdraw"},
		{"loan application", "Je voudrais un crédit de 20000 TND sur 5 ans", "apply_for_loan"},
	}

	for _, f := range flows {
		t.Run(f.name+"/no cancels", func(t *testing.T) {
			c := newConversation(t, customerID)

			res := c.say(f.opening)
			require.Contains(t, res.Response, runtime.MsgConfirmQuestion)
			assert.True(t, res.ActionRequired)
			assert.Empty(t, c.bank.moneyCalls())

			res = c.say("non")
			assert.Equal(t, runtime.MsgCancelled, res.Response)
			assert.False(t, res.ActionRequired)
			assert.Empty(t, c.bank.moneyCalls())
			assert.False(t, c.st.Active())
			assert.Empty(t, c.st.Entities)
		})

		t.Run(f.name+"/yes executes once", func(t *testing.T) {
			c := newConversation(t, customerID)

			c.say(f.opening)
			assert.Empty(t, c.bank.moneyCalls())

			res := c.say("oui")
			assert.Contains(t, res.Response, "✅")
			assert.Equal(t, []string{f.op}, c.bank.moneyCalls())
			assert.False(t, c.st.Active())

			res = c.say("oui")
			assert.Equal(t, runtime.MsgNothingPending, res.Response)
			assert.Equal(t, []string{f.op}, c.bank.moneyCalls())
		})
	}
}

func TestEngine_CheckpointPrecedesOperation(t *testing.T) {
	c := newConversation(t, customerID)
	c.say("Je veux déposer 200 TND sur le compte 12")

	var saved []*domain.State
	res := c.eng.ProcessWithCheckpoint(context.Background(), c.st,
		domain.Message{SessionID: c.st.SessionID, UserID: customerID, Text: "oui"},
		func(_ context.Context, st *domain.State) error {
			assert.Empty(t, c.bank.moneyCalls(), "checkpoint must run before the bank")
			saved = append(saved, st)
			return nil
		})
	assert.Contains(t, res.Response, "✅")
	assert.Equal(t, []string{"deposit"}, c.bank.moneyCalls())
	require.Len(t, saved, 1)
	assert.False(t, saved[0].Active())
	assert.Empty(t, saved[0].Entities)
}

func TestEngine_FailedCheckpointSkipsOperation(t *testing.T) {
	c := newConversation(t, customerID)
	c.say("Je veux déposer 200 TND sur le compte 12")

	res := c.eng.ProcessWithCheckpoint(context.Background(), c.st,
		domain.Message{SessionID: c.st.SessionID, UserID: customerID, Text: "oui"},
		func(context.Context, *domain.State) error { return errors.New("redis timeout") })
	assert.Equal(t, runtime.MsgTechnicalError, res.Response)
	assert.True(t, res.ActionRequired)
	assert.Empty(t, c.bank.moneyCalls())
	assert.True(t, c.st.Entities.Bool(domain.SlotConfirmationPending))
	assert.False(t, c.st.Entities.Has(domain.SlotConfirmation))

	// A message that is not an answer must not execute the stale confirmation.
	res = c.say("euh")
	assert.Empty(t, c.bank.moneyCalls())
	assert.Contains(t, res.Response, runtime.MsgConfirmQuestion)

	c.say("oui")
	assert.Equal(t, []string{"deposit"}, c.bank.moneyCalls())
}

func TestEngine_CancelBeforeAllSlots(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Je veux faire un virement")
	res := c.say("stop")
	assert.Equal(t, runtime.MsgCancelled, res.Response)
	assert.False(t, c.st.Active())
	assert.Empty(t, c.bank.moneyCalls())
}

func TestEngine_YesBeforeRestatementIsDiscarded(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Oui, je veux faire un virement de 300 TND à Sami depuis le compte 12")
	assert.Contains(t, res.Response, runtime.MsgConfirmQuestion)
	assert.NotContains(t, res.Entities, domain.SlotConfirmation)
	assert.Empty(t, c.bank.moneyCalls())

	c.say("oui")
	assert.Equal(t, []string{"transfer"}, c.bank.moneyCalls())
}

func TestEngine_ChangedSlotIsRestated(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Je veux faire un virement de 300 TND à Sami depuis le compte 12")

	res := c.say("oui, mais 400 TND")
	assert.Contains(t, res.Response, "**400.000 TND**")
	assert.Contains(t, res.Response, runtime.MsgConfirmQuestion)
	assert.NotContains(t, res.Response, runtime.MsgAnswerYesNo)
	assert.Empty(t, c.bank.moneyCalls())

	c.say("oui")
	require.Len(t, c.bank.transfers, 1)
	assert.Equal(t, 400.0, c.bank.transfers[0].Amount)
}

func TestEngine_PendingNeedsAnAnswer(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Retirer 100 TND du compte 12")
	res := c.say("hmm")
	assert.True(t, res.ActionRequired)
	assert.Contains(t, res.Response, runtime.MsgAnswerYesNo)
	assert.Contains(t, res.Response, "retirer **100.000 TND** du compte **Compte Courant**")
	assert.Empty(t, c.bank.moneyCalls())
}

func TestEngine_NoWithoutFlowIsNoop(t *testing.T) {
	c := newConversation(t, customerID)

	for _, text := range []string{"non", "stop", "non"} {
		res := c.say(text)
		assert.Equal(t, runtime.MsgNothingPending, res.Response)
		assert.False(t, res.ActionRequired)
		assert.True(t, res.Intent.IsCatchAll())
	}
	assert.Empty(t, c.bank.Calls())
	assert.False(t, c.st.Active())
}

func TestEngine_TopicSwitchDiscardsPendingFlow(t *testing.T) {
	var ended []domain.FlowEvent
	hooks := domain.LifecycleHooks{
		OnFlowEnd: func(_ context.Context, e *domain.FlowEvent) {
			ended = append(ended, *e)
		},
	}
	c := newConversation(t, customerID, runtime.WithLifecycleHooks(hooks))

	c.say("Je veux faire un virement de 300 TND à Sami depuis le compte 12")
	res := c.say("Quel est mon solde")

	assert.Equal(t, domain.IntentBalance, res.Intent)
	assert.Contains(t, res.Response, "💰 **Vos soldes actuels:**")
	assert.Contains(t, res.Response, "✅ **Compte Courant**: 5,000.000 TND")
	assert.Contains(t, res.Response, "📊 **Solde total**: 17,000.000 TND")
	assert.Empty(t, c.bank.moneyCalls())
	assert.False(t, c.st.Active())

	require.Len(t, ended, 2)
	assert.Equal(t, domain.IntentTransfer, ended[0].Intent)
	assert.Equal(t, domain.OutcomeSuperseded, ended[0].Outcome)
	assert.Equal(t, domain.IntentBalance, ended[1].Intent)
	assert.Equal(t, domain.OutcomeCompleted, ended[1].Outcome)

	// The confirmation meant for the abandoned transfer does nothing.
	res = c.say("oui")
	assert.Equal(t, runtime.MsgNothingPending, res.Response)
	assert.Empty(t, c.bank.moneyCalls())
}

func TestEngine_GreetingEndsFlow(t *testing.T) {
	c := newConversation(t, customerID)

	c.say("Je veux faire un virement")
	res := c.say("Bonjour")
	assert.Equal(t, runtime.MsgGreeting, res.Response)
	assert.Equal(t, domain.IntentGreeting, res.Intent)
	assert.False(t, c.st.Active())
}

func TestEngine_MoneyFlowsNeedIdentity(t *testing.T) {
	for _, text := range []string{
		"Je veux faire un virement",
		"Je veux déposer 200 TND",
		"Retirer 100 TND",
		"Je voudrais un crédit de 20000 TND sur 5 ans",
		"Affiche mes dernières transactions",
	} {
		c := newConversation(t, 0)
		res := c.say(text)
		assert.Contains(t, res.Response, "🔒", text)
		assert.False(t, res.ActionRequired, text)
		assert.False(t, c.st.Active(), text)
		assert.Empty(t, c.bank.Calls(), text)
	}
}

func TestEngine_AccountsUnavailable(t *testing.T) {
	c := newConversation(t, customerID)
	c.bank.accountsErr = domain.ErrBankUnavailable

	res := c.say("Je veux faire un virement")
	assert.Equal(t, runtime.MsgAccountsDown, res.Response)
	assert.Equal(t, domain.IntentTransfer, c.st.CurrentIntent)

	c.bank.accountsErr = nil
	res = c.say("compte 12")
	assert.Contains(t, res.Response, "Quel montant")
}

func TestEngine_ForeignAccountIsAskedAgain(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Retirer 100 TND du compte 99")
	assert.True(t, res.ActionRequired)
	assert.Contains(t, res.Response, "Le compte n°99 ne figure pas parmi vos comptes.")
	assert.Contains(t, res.Response, "De quel compte souhaitez-vous effectuer le retrait ?")
	assert.NotContains(t, res.Entities, domain.SlotFromAccount)
	assert.Equal(t, 100.0, res.Entities[domain.SlotAmount])

	res = c.say("compte 13")
	assert.Contains(t, res.Response, "du compte **Compte Épargne** (id 13)")
	assert.Empty(t, c.bank.moneyCalls())
}

func TestEngine_OperationFailureClearsState(t *testing.T) {
	c := newConversation(t, customerID)
	c.bank.opErr = domain.ErrInsufficientFunds

	c.say("Je veux faire un virement de 300 TND à Sami depuis le compte 12")
	res := c.say("oui")

	assert.Equal(t, "❌ Le virement n'a pas pu être effectué : Solde insuffisant", res.Response)
	assert.False(t, res.ActionRequired)
	assert.False(t, c.st.Active())
	assert.Empty(t, c.st.Entities)
	assert.Equal(t, []string{"transfer"}, c.bank.moneyCalls())
}

func TestEngine_InfrastructureFailureShowsReason(t *testing.T) {
	c := newConversation(t, customerID)
	c.bank.opErr = domain.NewOperationError("withdraw", errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	c.say("Retirer 100 TND du compte 12")
	res := c.say("oui")

	assert.Contains(t, res.Response, domain.ErrBankUnavailable.Error())
	assert.NotContains(t, res.Response, "dial tcp")
}

func TestEngine_InvalidSlotsArePromptedAgain(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Je veux déposer 0 TND sur le compte 12")
	assert.Contains(t, res.Response, "⚠️ Le montant doit être positif.")
	assert.Contains(t, res.Response, "Quel montant souhaitez-vous déposer")
	assert.NotContains(t, res.Entities, domain.SlotAmount)

	sim := newConversation(t, 0)
	res = sim.say("Simule un crédit de 10000 TND sur 40 ans")
	assert.Contains(t, res.Response, domain.ErrInvalidDuration.Error())
	assert.Contains(t, res.Response, "Sur combien d'années")
	assert.Equal(t, domain.IntentLoanSimulate, sim.st.CurrentIntent)

	res = sim.say("10 ans")
	assert.Contains(t, res.Response, "10 ans (120 mensualités)")
	assert.False(t, sim.st.Active())
}

func TestEngine_LoanApplication(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Je voudrais un crédit immobilier")
	assert.Equal(t, domain.IntentLoanApply, res.Intent)
	assert.Contains(t, res.Response, "Quel montant souhaitez-vous emprunter")

	res = c.say("80000 TND")
	assert.Contains(t, res.Response, "Sur combien d'années")

	res = c.say("sur 20 ans")
	assert.Contains(t, res.Response, "demande de crédit de **80,000.000 TND** sur **20 ans**")

	res = c.say("d'accord")
	assert.Contains(t, res.Response, "Référence : LOAN-0001")
	require.Len(t, c.bank.applications, 1)
	assert.Equal(t, customerID, c.bank.applications[0].UserID)
	assert.Equal(t, 20, c.bank.applications[0].Years)
}

func TestEngine_BalanceFilteredByType(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Quel est le solde de mon compte épargne")
	assert.Contains(t, res.Response, "Compte Épargne")
	assert.NotContains(t, res.Response, "Compte Courant")
	assert.Contains(t, res.Response, "📊 **Solde total**: 12,000.000 TND")
}

func TestEngine_RecentTransactions(t *testing.T) {
	c := newConversation(t, customerID)

	res := c.say("Affiche mes dernières transactions")
	assert.Equal(t, domain.IntentTransactions, res.Intent)
	assert.Contains(t, res.Response, "+2,500.000 TND - SALAIRE")
	assert.Contains(t, res.Response, "-60.000 TND - RETRAIT DAB")
	assert.Equal(t, []int64{0, 5}, c.bank.historyArgs)

	c.say("Historique du compte 12")
	assert.Equal(t, []int64{0, 5, 12, 5}, c.bank.historyArgs)
}

func TestEngine_InvalidInputKeepsState(t *testing.T) {
	c := newConversation(t, customerID)
	c.say("Je veux faire un virement de 300 TND à Sami depuis le compte 12")
	before := c.st.Snapshot()

	res := c.say("   ")
	assert.Equal(t, runtime.MsgEmptyInput, res.Response)
	assert.True(t, res.ActionRequired)
	assert.Equal(t, before.Entities, c.st.Entities)
	assert.Equal(t, before.Turns, c.st.Turns)

	res = c.say("\xff\xfe")
	assert.Equal(t, runtime.MsgUnreadableInput, res.Response)
	assert.Equal(t, domain.IntentTransfer, c.st.CurrentIntent)
}

func TestEngine_IdentityChangeDropsFlow(t *testing.T) {
	c := newConversation(t, customerID)
	c.say("Je veux faire un virement de 300 TND à Sami depuis le compte 12")

	c.user = 8
	res := c.say("oui")
	assert.Equal(t, runtime.MsgNothingPending, res.Response)
	assert.Empty(t, c.bank.moneyCalls())
}

type responderFunc func(context.Context, ports.ReplyRequest) (string, error)

func (f responderFunc) Reply(ctx context.Context, req ports.ReplyRequest) (string, error) {
	return f(ctx, req)
}

func TestEngine_GeneralPath(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		c := newConversation(t, 0)
		res := c.say("Quelle belle journée")
		assert.Equal(t, runtime.MsgGeneral, res.Response)
		assert.Equal(t, domain.IntentGeneral, res.Intent)
		assert.False(t, res.ActionRequired)
	})

	t.Run("model reply", func(t *testing.T) {
		var got ports.ReplyRequest
		c := newConversation(t, customerID, runtime.WithResponder(responderFunc(func(_ context.Context, req ports.ReplyRequest) (string, error) {
			got = req
			return "  Il fait toujours beau à Tunis.  ", nil
		})))
		res := c.say("Quelle belle journée")
		assert.Equal(t, "Il fait toujours beau à Tunis.", res.Response)
		assert.Equal(t, ports.ReplyRequest{Text: "Quelle belle journée", Intent: domain.IntentGeneral, UserID: customerID}, got)
	})

	t.Run("short reply", func(t *testing.T) {
		c := newConversation(t, 0, runtime.WithResponder(responderFunc(func(context.Context, ports.ReplyRequest) (string, error) {
			return "ok", nil
		})))
		assert.Equal(t, runtime.MsgClarify, c.say("Quelle belle journée").Response)
	})

	t.Run("responder error", func(t *testing.T) {
		c := newConversation(t, 0, runtime.WithResponder(responderFunc(func(context.Context, ports.ReplyRequest) (string, error) {
			return "", errors.New("quota exceeded")
		})))
		assert.Equal(t, runtime.MsgClarify, c.say("Quelle belle journée").Response)
	})

	t.Run("entities are echoed", func(t *testing.T) {
		c := newConversation(t, 0)
		res := c.say("500 TND à Ahmed")
		assert.Equal(t, 500.0, res.Entities[domain.SlotAmount])
		assert.Equal(t, "Ahmed", res.Entities[domain.SlotBeneficiary])
		assert.Empty(t, c.st.Entities)
	})
}

func TestEngine_BayesStrategy(t *testing.T) {
	classifier, err := nlu.NewClassifier(nlu.StrategyBayes)
	require.NoError(t, err)
	c := newConversation(t, 0, runtime.WithClassifier(classifier))

	res := c.say("xyzzy qwerty")
	assert.Equal(t, domain.IntentUnknown, res.Intent)
	assert.Equal(t, runtime.MsgClarify, res.Response)

	res = c.say("bonjour")
	assert.Equal(t, domain.IntentGreeting, res.Intent)
	assert.Equal(t, runtime.MsgGreeting, res.Response)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var turns []domain.TurnEvent
	var ops []string
	hooks := domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			turns = append(turns, *e)
		},
		OnOperation: func(_ context.Context, e *domain.OperationEvent) {
			ops = append(ops, e.Operation)
			assert.NoError(t, e.Err)
		},
	}
	c := newConversation(t, customerID, runtime.WithLifecycleHooks(hooks))

	c.say("Retirer 100 TND du compte 12")
	c.say("oui")

	require.Len(t, turns, 2)
	assert.Equal(t, domain.EventTurn, turns[0].Type)
	assert.Equal(t, "sess-1", turns[0].SessionID)
	assert.True(t, turns[0].ActionRequired)
	assert.False(t, turns[1].ActionRequired)
	assert.Equal(t, []string{"accounts", "withdraw"}, ops)
}
