package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/teller/pkg/domain"
)

// recentTransactionsLimit is how many ledger lines a history query shows.
const recentTransactionsLimit = 5

func defaultFlows() map[domain.Intent]*flow {
	flows := []*flow{
		{
			intent:   domain.IntentTransfer,
			auth:     true,
			authText: MsgAuthRequired,
			confirm:  true,
			required: []slot{
				{name: domain.SlotFromAccount, prompt: promptTransferSource, account: true},
				{name: domain.SlotAmount, prompt: promptTransferAmount},
				{name: domain.SlotBeneficiary, prompt: promptBeneficiary},
			},
			failure: "Le virement n'a pas pu être effectué",
			restate: restateTransfer,
			execute: executeTransfer,
		},
		{
			intent:   domain.IntentDeposit,
			auth:     true,
			authText: MsgAuthRequired,
			confirm:  true,
			required: []slot{
				{name: domain.SlotToAccount, prompt: promptDepositTarget, account: true},
				{name: domain.SlotAmount, prompt: promptDepositAmount},
			},
			failure: "Le dépôt n'a pas pu être effectué",
			restate: func(t *turn) string {
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				return fmt.Sprintf("📝 Vous allez déposer **%s** sur le compte **%s** (id %d).\n%s",
					FormatTND(amount), t.account.Label, t.account.ID, MsgConfirmQuestion)
			},
			execute: func(ctx context.Context, e *Engine, t *turn) (string, error) {
				id, _ := t.state.Entities.Int(domain.SlotToAccount)
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				var receipt domain.BalanceReceipt
				err := e.call(ctx, t, "deposit", func(ctx context.Context) (err error) {
					receipt, err = e.bank.Deposit(ctx, id, amount)
					return err
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("✅ Dépôt de %s effectué avec succès.\nNouveau solde : %s",
					FormatTND(amount), FormatTND(receipt.NewBalance)), nil
			},
		},
		{
			intent:   domain.IntentWithdrawal,
			auth:     true,
			authText: MsgAuthRequired,
			confirm:  true,
			required: []slot{
				{name: domain.SlotFromAccount, prompt: promptWithdrawalSource, account: true},
				{name: domain.SlotAmount, prompt: promptWithdrawalAmount},
			},
			failure: "Le retrait n'a pas pu être effectué",
			restate: func(t *turn) string {
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				return fmt.Sprintf("📝 Vous allez retirer **%s** du compte **%s** (id %d).\n%s",
					FormatTND(amount), t.account.Label, t.account.ID, MsgConfirmQuestion)
			},
			execute: func(ctx context.Context, e *Engine, t *turn) (string, error) {
				id, _ := t.state.Entities.Int(domain.SlotFromAccount)
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				var receipt domain.BalanceReceipt
				err := e.call(ctx, t, "withdraw", func(ctx context.Context) (err error) {
					receipt, err = e.bank.Withdraw(ctx, id, amount)
					return err
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("✅ Retrait de %s effectué avec succès.\nNouveau solde : %s",
					FormatTND(amount), FormatTND(receipt.NewBalance)), nil
			},
		},
		{
			intent:   domain.IntentLoanApply,
			auth:     true,
			authText: MsgAuthRequired,
			confirm:  true,
			required: []slot{
				{name: domain.SlotAmount, prompt: promptLoanAmount},
				{name: domain.SlotYears, prompt: promptYears},
			},
			failure: "La demande de crédit n'a pas pu être enregistrée",
			restate: func(t *turn) string {
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				years, _ := t.state.Entities.Int(domain.SlotYears)
				return fmt.Sprintf("📝 Vous allez soumettre une demande de crédit de **%s** sur **%d ans**.\n%s",
					FormatTND(amount), years, MsgConfirmQuestion)
			},
			execute: func(ctx context.Context, e *Engine, t *turn) (string, error) {
				amount, _ := t.state.Entities.Float(domain.SlotAmount)
				years, _ := t.state.Entities.Int(domain.SlotYears)
				var app domain.LoanApplication
				err := e.call(ctx, t, "apply_for_loan", func(ctx context.Context) (err error) {
					app, err = e.bank.ApplyForLoan(ctx, t.msg.UserID, amount, int(years))
					return err
				})
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("✅ Votre demande de crédit de %s sur %d ans a été enregistrée.\n"+
					"Référence : %s\nMensualité estimée : %s\nUn conseiller étudiera votre dossier dans les meilleurs délais.",
					FormatTND(amount), years, app.ApplicationID, FormatTND(app.MonthlyPayment)), nil
			},
		},
		{
			intent: domain.IntentLoanSimulate,
			required: []slot{
				{name: domain.SlotAmount, prompt: promptLoanAmount},
				{name: domain.SlotYears, prompt: promptYears},
			},
			failure: "La simulation n'a pas pu être réalisée",
			execute: executeSimulation,
		},
		{
			intent:   domain.IntentBalance,
			auth:     true,
			authText: MsgAuthToConsult,
			failure:  "La consultation de vos comptes a échoué",
			execute:  executeBalance,
		},
		{
			intent:   domain.IntentTransactions,
			auth:     true,
			authText: MsgAuthToConsult,
			failure:  "La consultation de vos opérations a échoué",
			execute:  executeTransactions,
		},
	}

	out := make(map[domain.Intent]*flow, len(flows))
	for _, f := range flows {
		out[f.intent] = f
	}
	return out
}

func restateTransfer(t *turn) string {
	e := t.state.Entities
	amount, _ := e.Float(domain.SlotAmount)
	beneficiary, _ := e.String(domain.SlotBeneficiary)

	dest := "**" + beneficiary + "**"
	if number, ok := e.String(domain.SlotToAccountNumber); ok {
		dest += " (compte n° " + number + ")"
	}
	return fmt.Sprintf("📝 Vous allez effectuer un virement de **%s** depuis le compte **%s** (id %d) vers %s.\n%s",
		FormatTND(amount), t.account.Label, t.account.ID, dest, MsgConfirmQuestion)
}

func executeTransfer(ctx context.Context, e *Engine, t *turn) (string, error) {
	ent := t.state.Entities
	req := domain.TransferRequest{UserID: t.msg.UserID}
	req.FromAccountID, _ = ent.Int(domain.SlotFromAccount)
	req.Amount, _ = ent.Float(domain.SlotAmount)
	req.BeneficiaryName, _ = ent.String(domain.SlotBeneficiary)
	req.ToAccountNumber, _ = ent.String(domain.SlotToAccountNumber)

	var receipt domain.TransferReceipt
	err := e.call(ctx, t, "transfer", func(ctx context.Context) (err error) {
		receipt, err = e.bank.Transfer(ctx, req)
		return err
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Virement de %s vers %s effectué avec succès.\nRéférence : %s\nNouveau solde : %s",
		FormatTND(req.Amount), req.BeneficiaryName, receipt.TransferID, FormatTND(receipt.NewBalance)), nil
}

func executeSimulation(ctx context.Context, e *Engine, t *turn) (string, error) {
	amount, _ := t.state.Entities.Float(domain.SlotAmount)
	years, _ := t.state.Entities.Int(domain.SlotYears)

	var sim domain.LoanSimulation
	err := e.call(ctx, t, "simulate_loan", func(ctx context.Context) (err error) {
		sim, err = e.bank.SimulateLoan(ctx, amount, int(years), e.annualRate)
		return err
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📊 **Simulation de crédit**\n")
	fmt.Fprintf(&b, "• Montant : %s\n", FormatTND(sim.Amount))
	fmt.Fprintf(&b, "• Durée : %d ans (%d mensualités)\n", sim.Years, sim.Years*12)
	fmt.Fprintf(&b, "• Taux annuel : %s\n", formatRate(sim.AnnualRate))
	fmt.Fprintf(&b, "• Mensualité : **%s**\n", FormatTND(sim.MonthlyPayment))
	fmt.Fprintf(&b, "• Coût total : %s\n", FormatTND(sim.TotalPayment))
	fmt.Fprintf(&b, "• Intérêts : %s\n\n", FormatTND(sim.TotalInterest))
	b.WriteString("Pour déposer une demande, dites « Je veux demander un crédit ».")
	return b.String(), nil
}

func executeBalance(ctx context.Context, e *Engine, t *turn) (string, error) {
	list, err := e.accountList(ctx, t)
	if err != nil {
		return "", err
	}

	accounts := list.Accounts
	if id, ok := t.state.Entities.Int(domain.SlotFromAccount); ok {
		if a, found := list.Find(id); found {
			accounts = []domain.Account{a}
		}
	} else if kind, ok := t.state.Entities.String(domain.SlotAccountType); ok {
		if filtered := list.OfType(kind); len(filtered) > 0 {
			accounts = filtered
		}
	}
	if len(accounts) == 0 {
		return MsgNoAccounts, nil
	}
	return formatBalances(accounts), nil
}

func executeTransactions(ctx context.Context, e *Engine, t *turn) (string, error) {
	accountID, _ := t.state.Entities.Int(domain.SlotFromAccount)

	var txs []domain.Transaction
	err := e.call(ctx, t, "recent_transactions", func(ctx context.Context) (err error) {
		txs, err = e.bank.RecentTransactions(ctx, t.msg.UserID, accountID, recentTransactionsLimit)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return MsgNoTransactions, nil
	}
	if len(txs) > recentTransactionsLimit {
		txs = txs[:recentTransactionsLimit]
	}
	return formatTransactions(txs), nil
}
