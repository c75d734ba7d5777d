package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/google/uuid"
)

// Beneficiary is a payee saved by a customer.
type Beneficiary struct {
	UserID        int64  `json:"user_id"`
	FullName      string `json:"full_name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

// TransferRecord is an executed transfer.
type TransferRecord struct {
	ID              string    `json:"id"`
	FromAccountID   int64     `json:"from_account_id"`
	ToAccountNumber string    `json:"to_account_number,omitempty"`
	BeneficiaryName string    `json:"beneficiary_name"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	Date            time.Time `json:"date"`
}

// TransferCompleted is the status of executed transfers.
const TransferCompleted = "COMPLETED"

// Seed is the initial content of a Bank.
type Seed struct {
	Accounts      []domain.Account
	Beneficiaries []Beneficiary
	Transactions  []domain.Transaction
}

// Bank implements ports.Banking in memory.
// Safe for concurrent use; every operation is atomic.
type Bank struct {
	mu sync.Mutex

	accounts      map[int64]*domain.Account
	order         []int64
	beneficiaries []Beneficiary
	ledger        []domain.Transaction
	transfers     []TransferRecord
	loans         []domain.LoanApplication
	nextTxID      int64

	annualRate float64
	now        func() time.Time
}

// BankOption configures a Bank.
type BankOption func(*Bank)

// WithAnnualRate sets the rate used for loan applications.
func WithAnnualRate(rate float64) BankOption {
	return func(b *Bank) {
		b.annualRate = rate
	}
}

// WithBankClock overrides time.Now for ledger dates.
func WithBankClock(now func() time.Time) BankOption {
	return func(b *Bank) {
		b.now = now
	}
}

// NewBank creates a bank holding seed.
func NewBank(seed Seed, opts ...BankOption) *Bank {
	b := &Bank{
		accounts:      make(map[int64]*domain.Account, len(seed.Accounts)),
		beneficiaries: append([]Beneficiary(nil), seed.Beneficiaries...),
		annualRate:    domain.DefaultAnnualRate,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, a := range seed.Accounts {
		a := a
		if a.Currency == "" {
			a.Currency = "TND"
		}
		b.accounts[a.ID] = &a
		b.order = append(b.order, a.ID)
	}
	for _, t := range seed.Transactions {
		b.nextTxID++
		if t.ID == 0 {
			t.ID = b.nextTxID
		}
		b.ledger = append(b.ledger, t)
	}
	return b
}

// NewDemoBank returns a bank seeded with two demo customers (ids 1 and 2).
func NewDemoBank(opts ...BankOption) *Bank {
	return NewBank(DemoSeed(), opts...)
}

// DemoSeed is the data behind NewDemoBank.
func DemoSeed() Seed {
	day := func(d int) time.Time {
		return time.Date(2024, time.January, d, 9, 0, 0, 0, time.UTC)
	}
	return Seed{
		Accounts: []domain.Account{
			{ID: 1, UserID: 1, Label: "Compte Courant", Number: "07001000123456", Balance: 15420.750, Type: "courant"},
			{ID: 2, UserID: 1, Label: "Compte Épargne", Number: "07001000123457", Balance: 45000.000, Type: "epargne"},
			{ID: 3, UserID: 2, Label: "Compte Courant", Number: "07002000987654", Balance: 3250.500, Type: "courant"},
		},
		Beneficiaries: []Beneficiary{
			{UserID: 1, FullName: "Ahmed Ben Salah", BankName: "Amen Bank", AccountNumber: "07003000555111"},
			{UserID: 1, FullName: "Fatma Trabelsi", BankName: "BIAT", AccountNumber: "08001000777222"},
		},
		Transactions: []domain.Transaction{
			{AccountID: 1, Date: day(3), Description: "SALAIRE JANVIER", Type: "VIREMENT", Amount: 3200, Indicator: domain.Credit},
			{AccountID: 1, Date: day(5), Description: "RETRAIT DAB", Type: "RETRAIT", Amount: 200, Indicator: domain.Debit},
			{AccountID: 1, Date: day(8), Description: "PAIEMENT CARTE MONOPRIX", Type: "CARTE", Amount: 86.450, Indicator: domain.Debit},
			{AccountID: 2, Date: day(10), Description: "VERSEMENT EPARGNE", Type: "VIREMENT", Amount: 500, Indicator: domain.Credit},
			{AccountID: 3, Date: day(12), Description: "FACTURE STEG", Type: "PRELEVEMENT", Amount: 74.300, Indicator: domain.Debit},
		},
	}
}

// Accounts implements ports.Banking.
func (b *Bank) Accounts(ctx context.Context, userID int64) (domain.AccountList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var list domain.AccountList
	for _, id := range b.order {
		a := b.accounts[id]
		if a.UserID != userID {
			continue
		}
		list.Accounts = append(list.Accounts, *a)
		list.TotalBalance += a.Balance
	}
	list.TotalBalance = domain.Round3(list.TotalBalance)
	return list, nil
}

// RecentTransactions implements ports.Banking.
func (b *Bank) RecentTransactions(ctx context.Context, userID, accountID int64, limit int) ([]domain.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if accountID != 0 {
		if _, err := b.owned(userID, accountID); err != nil {
			return nil, err
		}
	}

	var out []domain.Transaction
	for _, t := range b.ledger {
		a, ok := b.accounts[t.AccountID]
		if !ok || a.UserID != userID || (accountID != 0 && t.AccountID != accountID) {
			continue
		}
		out = append(out, t)
	}
	// Newest first; ids break ties between lines of the same instant.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Transfer implements ports.Banking. The destination is resolved among the
// customer's saved beneficiaries when no account number is given; the credit
// side is settled by the receiving bank.
func (b *Bank) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	if req.Amount <= 0 {
		return domain.TransferReceipt{}, domain.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	src, err := b.owned(req.UserID, req.FromAccountID)
	if err != nil {
		return domain.TransferReceipt{}, err
	}
	if src.Balance < req.Amount {
		return domain.TransferReceipt{}, domain.ErrInsufficientFunds
	}

	number := req.ToAccountNumber
	name := req.BeneficiaryName
	if number == "" {
		if ben, ok := b.findBeneficiary(req.UserID, name); ok {
			number = ben.AccountNumber
			name = ben.FullName
		}
	}

	src.Balance = domain.Round3(src.Balance - req.Amount)
	b.record(src.ID, "VIREMENT vers "+name, "VIREMENT", req.Amount, domain.Debit)

	rec := TransferRecord{
		ID:              uuid.NewString(),
		FromAccountID:   src.ID,
		ToAccountNumber: number,
		BeneficiaryName: name,
		Amount:          req.Amount,
		Status:          TransferCompleted,
		Date:            b.now(),
	}
	b.transfers = append(b.transfers, rec)

	return domain.TransferReceipt{TransferID: rec.ID, NewBalance: src.Balance}, nil
}

// Deposit implements ports.Banking.
func (b *Bank) Deposit(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	if amount <= 0 {
		return domain.BalanceReceipt{}, domain.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.accounts[accountID]
	if !ok {
		return domain.BalanceReceipt{}, domain.ErrAccountNotFound
	}
	a.Balance = domain.Round3(a.Balance + amount)
	b.record(a.ID, "DEPOT", "DEPOT", amount, domain.Credit)
	return domain.BalanceReceipt{NewBalance: a.Balance}, nil
}

// Withdraw implements ports.Banking.
func (b *Bank) Withdraw(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	if amount <= 0 {
		return domain.BalanceReceipt{}, domain.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.accounts[accountID]
	if !ok {
		return domain.BalanceReceipt{}, domain.ErrAccountNotFound
	}
	if a.Balance < amount {
		return domain.BalanceReceipt{}, domain.ErrInsufficientFunds
	}
	a.Balance = domain.Round3(a.Balance - amount)
	b.record(a.ID, "RETRAIT", "RETRAIT", amount, domain.Debit)
	return domain.BalanceReceipt{NewBalance: a.Balance}, nil
}

// SimulateLoan implements ports.Banking.
func (b *Bank) SimulateLoan(ctx context.Context, amount float64, years int, annualRate float64) (domain.LoanSimulation, error) {
	return domain.SimulateLoan(amount, years, annualRate)
}

// ApplyForLoan implements ports.Banking.
func (b *Bank) ApplyForLoan(ctx context.Context, userID int64, amount float64, years int) (domain.LoanApplication, error) {
	sim, err := domain.SimulateLoan(amount, years, b.annualRate)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	app := domain.LoanApplication{
		ApplicationID:  uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		Years:          years,
		MonthlyPayment: sim.MonthlyPayment,
		Status:         domain.LoanStatusPending,
		SubmittedAt:    b.now(),
	}
	b.loans = append(b.loans, app)
	return app, nil
}

// Transfers returns the executed transfers, oldest first.
func (b *Bank) Transfers() []TransferRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]TransferRecord(nil), b.transfers...)
}

// LoanApplications returns the applications of userID, oldest first.
func (b *Bank) LoanApplications(userID int64) []domain.LoanApplication {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.LoanApplication
	for _, app := range b.loans {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out
}

func (b *Bank) owned(userID, accountID int64) (*domain.Account, error) {
	a, ok := b.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// findBeneficiary matches name against the start of saved beneficiary names,
// ignoring case: "ahmed" finds "Ahmed Ben Salah".
func (b *Bank) findBeneficiary(userID int64, name string) (Beneficiary, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Beneficiary{}, false
	}
	for _, ben := range b.beneficiaries {
		if ben.UserID == userID && strings.HasPrefix(strings.ToLower(ben.FullName), name) {
			return ben, true
		}
	}
	return Beneficiary{}, false
}

func (b *Bank) record(accountID int64, description, kind string, amount float64, indicator string) {
	b.nextTxID++
	b.ledger = append(b.ledger, domain.Transaction{
		ID:          b.nextTxID,
		AccountID:   accountID,
		Date:        b.now(),
		Description: description,
		Type:        kind,
		Amount:      amount,
		Indicator:   indicator,
	})
}
