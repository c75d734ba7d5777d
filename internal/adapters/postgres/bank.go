package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/teller/internal/logging"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/google/uuid"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Bank implements ports.Banking over PostgreSQL.
//
// Every money movement runs in one transaction that locks the account row
// with SELECT ... FOR UPDATE before reading its balance.
type Bank struct {
	db         *sql.DB
	annualRate float64
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Bank.
type Option func(*Bank)

// WithAnnualRate sets the rate used for loan applications.
func WithAnnualRate(rate float64) Option {
	return func(b *Bank) {
		b.annualRate = rate
	}
}

// WithLogger configures a logger for the Bank.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bank) {
		b.logger = logger
	}
}

// WithClock overrides time.Now for ledger dates.
func WithClock(now func() time.Time) Option {
	return func(b *Bank) {
		b.now = now
	}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Bank, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, opts ...Option) *Bank {
	b := &Bank{
		db:         db,
		annualRate: domain.DefaultAnnualRate,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EnsureSchema creates the tables the bank needs when they are missing.
func (b *Bank) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (b *Bank) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the connection pool.
func (b *Bank) Close() error {
	return b.db.Close()
}

// Accounts implements ports.Banking.
func (b *Bank) Accounts(ctx context.Context, userID int64) (domain.AccountList, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT account_id, user_id, account_label, account_number, current_balance, account_type, currency
		FROM accounts
		WHERE user_id = $1
		ORDER BY account_id`, userID)
	if err != nil {
		return domain.AccountList{}, b.infra("accounts", err)
	}
	defer rows.Close()

	var list domain.AccountList
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Number, &a.Balance, &a.Type, &a.Currency); err != nil {
			return domain.AccountList{}, b.infra("accounts", err)
		}
		list.Accounts = append(list.Accounts, a)
		list.TotalBalance += a.Balance
	}
	if err := rows.Err(); err != nil {
		return domain.AccountList{}, b.infra("accounts", err)
	}
	list.TotalBalance = domain.Round3(list.TotalBalance)
	return list, nil
}

// RecentTransactions implements ports.Banking. accountID 0 spans every
// account of the user.
func (b *Bank) RecentTransactions(ctx context.Context, userID, accountID int64, limit int) ([]domain.Transaction, error) {
	const op = "recent_transactions"

	if accountID != 0 {
		var owner int64
		err := b.db.QueryRowContext(ctx,
			`SELECT user_id FROM accounts WHERE account_id = $1`, accountID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
			return nil, domain.ErrAccountNotFound
		}
		if err != nil {
			return nil, b.infra(op, err)
		}
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT t.transaction_id, t.account_id, t.transaction_date, t.description,
		       t.transaction_type, t.amount, t.debit_credit_indicator
		FROM transactions t
		JOIN accounts a ON a.account_id = t.account_id
		WHERE a.user_id = $1 AND ($2 = 0 OR t.account_id = $2)
		ORDER BY t.transaction_date DESC, t.transaction_id DESC
		LIMIT $3`, userID, accountID, limit)
	if err != nil {
		return nil, b.infra(op, err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &t.Type, &t.Amount, &t.Indicator); err != nil {
			return nil, b.infra(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, b.infra(op, err)
	}
	return out, nil
}

// Transfer implements ports.Banking. Without an account number the
// destination is resolved among the user's saved beneficiaries by name prefix.
func (b *Bank) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	const op = "transfer"
	if req.Amount <= 0 {
		return domain.TransferReceipt{}, domain.ErrInvalidAmount
	}

	var receipt domain.TransferReceipt
	err := b.inTx(ctx, op, func(tx *sql.Tx) error {
		balance, err := b.lockAccount(ctx, tx, req.FromAccountID, req.UserID)
		if err != nil {
			return err
		}
		if balance < req.Amount {
			return domain.ErrInsufficientFunds
		}

		name, number := req.BeneficiaryName, req.ToAccountNumber
		if number == "" {
			err := tx.QueryRowContext(ctx, `
				SELECT full_name, account_number
				FROM beneficiaries
				WHERE user_id = $1 AND lower(full_name) LIKE lower($2) || '%'
				ORDER BY beneficiary_id
				LIMIT 1`, req.UserID, name).Scan(&name, &number)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
		}

		newBalance := domain.Round3(balance - req.Amount)
		if err := b.setBalance(ctx, tx, req.FromAccountID, newBalance); err != nil {
			return err
		}
		if err := b.record(ctx, tx, req.FromAccountID, "VIREMENT vers "+name, "VIREMENT", req.Amount, domain.Debit); err != nil {
			return err
		}

		id := uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transfers (transfer_id, from_account_id, to_account_number, beneficiary_name, amount, status, transfer_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, req.FromAccountID, nullable(number), name, req.Amount, "COMPLETED", b.now())
		if err != nil {
			return err
		}

		receipt = domain.TransferReceipt{TransferID: id, NewBalance: newBalance}
		return nil
	})
	return receipt, err
}

// Deposit implements ports.Banking.
func (b *Bank) Deposit(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	return b.move(ctx, "deposit", accountID, amount, domain.Credit)
}

// Withdraw implements ports.Banking.
func (b *Bank) Withdraw(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error) {
	return b.move(ctx, "withdraw", accountID, amount, domain.Debit)
}

func (b *Bank) move(ctx context.Context, op string, accountID int64, amount float64, indicator string) (domain.BalanceReceipt, error) {
	if amount <= 0 {
		return domain.BalanceReceipt{}, domain.ErrInvalidAmount
	}

	var receipt domain.BalanceReceipt
	err := b.inTx(ctx, op, func(tx *sql.Tx) error {
		balance, err := b.lockAccount(ctx, tx, accountID, 0)
		if err != nil {
			return err
		}

		label, kind := "DEPOT", "DEPOT"
		newBalance := domain.Round3(balance + amount)
		if indicator == domain.Debit {
			if balance < amount {
				return domain.ErrInsufficientFunds
			}
			label, kind = "RETRAIT", "RETRAIT"
			newBalance = domain.Round3(balance - amount)
		}

		if err := b.setBalance(ctx, tx, accountID, newBalance); err != nil {
			return err
		}
		if err := b.record(ctx, tx, accountID, label, kind, amount, indicator); err != nil {
			return err
		}
		receipt.NewBalance = newBalance
		return nil
	})
	return receipt, err
}

// SimulateLoan implements ports.Banking. Nothing is persisted.
func (b *Bank) SimulateLoan(ctx context.Context, amount float64, years int, annualRate float64) (domain.LoanSimulation, error) {
	return domain.SimulateLoan(amount, years, annualRate)
}

// ApplyForLoan implements ports.Banking.
func (b *Bank) ApplyForLoan(ctx context.Context, userID int64, amount float64, years int) (domain.LoanApplication, error) {
	sim, err := domain.SimulateLoan(amount, years, b.annualRate)
	if err != nil {
		return domain.LoanApplication{}, err
	}

	app := domain.LoanApplication{
		ApplicationID:  uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		Years:          years,
		MonthlyPayment: sim.MonthlyPayment,
		Status:         domain.LoanStatusPending,
		SubmittedAt:    b.now(),
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO loan_applications (application_id, user_id, requested_amount, loan_term_years, monthly_payment_simulation, status, application_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		app.ApplicationID, app.UserID, app.Amount, app.Years, app.MonthlyPayment, app.Status, app.SubmittedAt)
	if err != nil {
		return domain.LoanApplication{}, b.infra("apply_for_loan", err)
	}
	return app, nil
}

// inTx runs fn in a transaction. Domain errors are returned as is, anything
// else becomes an OperationError.
func (b *Bank) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return b.infra(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if isDomainError(err) {
			return err
		}
		return b.infra(op, err)
	}
	if err := tx.Commit(); err != nil {
		return b.infra(op, err)
	}
	return nil
}

// lockAccount locks the account row and returns its balance. A non-zero
// userID also checks ownership.
func (b *Bank) lockAccount(ctx context.Context, tx *sql.Tx, accountID, userID int64) (float64, error) {
	var (
		owner   int64
		balance float64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT user_id, current_balance FROM accounts WHERE account_id = $1 FOR UPDATE`,
		accountID).Scan(&owner, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	if userID != 0 && owner != userID {
		return 0, domain.ErrAccountNotFound
	}
	return balance, nil
}

func (b *Bank) setBalance(ctx context.Context, tx *sql.Tx, accountID int64, balance float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET current_balance = $1 WHERE account_id = $2`, balance, accountID)
	return err
}

func (b *Bank) record(ctx context.Context, tx *sql.Tx, accountID int64, description, kind string, amount float64, indicator string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (account_id, transaction_date, description, transaction_type, amount, debit_credit_indicator)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		accountID, b.now(), description, kind, amount, indicator)
	return err
}

func (b *Bank) infra(op string, err error) error {
	b.logger.Error("Bank query failed", "operation", op, "error", err)
	return domain.NewOperationError(op, err)
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrAccountNotFound) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrInvalidAmount)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
