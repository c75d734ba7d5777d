package ports

import (
	"context"

	"github.com/aretw0/teller/pkg/domain"
)

// Banking is the banking collaborator the flows act through.
//
// Every operation is individually atomic. Failures are returned as errors whose
// text is fit to be shown to the customer (see the domain banking errors and
// domain.OperationError).
type Banking interface {
	// Accounts lists the accounts owned by userID.
	Accounts(ctx context.Context, userID int64) (domain.AccountList, error)

	// RecentTransactions returns the latest ledger lines of userID, newest first.
	// A non-zero accountID restricts the listing to that account.
	RecentTransactions(ctx context.Context, userID, accountID int64, limit int) ([]domain.Transaction, error)

	// Transfer debits the source account and records the transfer.
	Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error)

	// Deposit credits accountID.
	Deposit(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error)

	// Withdraw debits accountID. It fails when amount <= 0 or exceeds the balance.
	Withdraw(ctx context.Context, accountID int64, amount float64) (domain.BalanceReceipt, error)

	// SimulateLoan computes an amortization summary without side effects.
	SimulateLoan(ctx context.Context, amount float64, years int, annualRate float64) (domain.LoanSimulation, error)

	// ApplyForLoan records a pending loan application.
	ApplyForLoan(ctx context.Context, userID int64, amount float64, years int) (domain.LoanApplication, error)
}
