package runtime_test

import (
	"context"
	"sync"

	"github.com/aretw0/teller/pkg/domain"
)

const (
	customerID       = int64(7)
	currentAccountID = int64(12)
	savingsAccountID = int64(13)
)

// recordingBank is a ports.Banking fake that records every call.
type recordingBank struct {
	mu sync.Mutex

	accounts    domain.AccountList
	accountsErr error
	opErr       error

	calls        []string
	transfers    []domain.TransferRequest
	deposits     []float64
	withdrawals  []float64
	applications []domain.LoanApplication
	historyArgs  []int64
}

func newRecordingBank() *recordingBank {
	return &recordingBank{
		accounts: domain.AccountList{
			Accounts: []domain.Account{
				{ID: currentAccountID, UserID: customerID, Label: "Compte Courant", Number: "0012345678", Balance: 5000, Type: "courant", Currency: "TND"},
				{ID: savingsAccountID, UserID: customerID, Label: "Compte Épargne", Number: "0013345678", Balance: 12000, Type: "epargne", Currency: "TND"},
			},
			TotalBalance: 17000,
		},
	}
}

func (b *recordingBank) record(op string) {
	b.calls = append(b.calls, op)
}

// moneyCalls returns the recorded operations that change balances or records.
func (b *recordingBank) moneyCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.calls {
		switch c {
		case "transfer", "deposit", "withdraw", "apply_for_loan":
			out = append(out, c)
		}
	}
	return out
}

func (b *recordingBank) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *recordingBank) balance(id int64) float64 {
	a, _ := b.accounts.Find(id)
	return a.Balance
}

func (b *recordingBank) Accounts(_ context.Context, userID int64) (domain.AccountList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("accounts")
	if b.accountsErr != nil {
		return domain.AccountList{}, b.accountsErr
	}
	if userID != customerID {
		return domain.AccountList{}, nil
	}
	return b.accounts, nil
}

func (b *recordingBank) RecentTransactions(_ context.Context, _ int64, accountID int64, limit int) ([]domain.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("recent_transactions")
	b.historyArgs = append(b.historyArgs, accountID, int64(limit))
	if b.opErr != nil {
		return nil, b.opErr
	}
	return []domain.Transaction{
		{ID: 2, AccountID: currentAccountID, Description: "RETRAIT DAB", Amount: 60, Indicator: domain.Debit},
		{ID: 1, AccountID: currentAccountID, Description: "SALAIRE", Amount: 2500, Indicator: domain.Credit},
	}, nil
}

func (b *recordingBank) Transfer(_ context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("transfer")
	if b.opErr != nil {
		return domain.TransferReceipt{}, b.opErr
	}
	b.transfers = append(b.transfers, req)
	return domain.TransferReceipt{TransferID: "TRF-0001", NewBalance: b.balance(req.FromAccountID) - req.Amount}, nil
}

func (b *recordingBank) Deposit(_ context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("deposit")
	if b.opErr != nil {
		return domain.BalanceReceipt{}, b.opErr
	}
	b.deposits = append(b.deposits, amount)
	return domain.BalanceReceipt{NewBalance: b.balance(accountID) + amount}, nil
}

func (b *recordingBank) Withdraw(_ context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("withdraw")
	if b.opErr != nil {
		return domain.BalanceReceipt{}, b.opErr
	}
	b.withdrawals = append(b.withdrawals, amount)
	return domain.BalanceReceipt{NewBalance: b.balance(accountID) - amount}, nil
}

func (b *recordingBank) SimulateLoan(_ context.Context, amount float64, years int, rate float64) (domain.LoanSimulation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("simulate_loan")
	return domain.SimulateLoan(amount, years, rate)
}

func (b *recordingBank) ApplyForLoan(_ context.Context, userID int64, amount float64, years int) (domain.LoanApplication, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("apply_for_loan")
	if b.opErr != nil {
		return domain.LoanApplication{}, b.opErr
	}
	app := domain.LoanApplication{
		ApplicationID:  "LOAN-0001",
		UserID:         userID,
		Amount:         amount,
		Years:          years,
		MonthlyPayment: domain.MonthlyPayment(amount, years, domain.DefaultAnnualRate),
		Status:         domain.LoanStatusPending,
	}
	b.applications = append(b.applications, app)
	return app, nil
}
