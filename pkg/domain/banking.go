package domain

import (
	"strings"
	"time"
)

// Account is a customer account as seen by the dialogue.
type Account struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"user_id,omitempty"`
	Label    string  `json:"label"`
	Number   string  `json:"number"`
	Balance  float64 `json:"balance"`
	Type     string  `json:"type"`
	Currency string  `json:"currency"`
}

// AccountList is the result of an accounts lookup.
type AccountList struct {
	Accounts     []Account `json:"accounts"`
	TotalBalance float64   `json:"total_balance"`
}

// Find returns the account with the given id.
func (l AccountList) Find(id int64) (Account, bool) {
	for _, a := range l.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

// OfType filters accounts by type or label prefix ("courant", "epargne").
func (l AccountList) OfType(kind string) []Account {
	kind = foldAccountType(kind)
	var out []Account
	for _, a := range l.Accounts {
		if foldAccountType(a.Type) == kind || strings.Contains(foldAccountType(a.Label), kind) {
			out = append(out, a)
		}
	}
	return out
}

func foldAccountType(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "é", "e")
}

// Transaction is one ledger line.
type Transaction struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	// Indicator is "D" for debit, "C" for credit.
	Indicator string `json:"indicator"`
}

// Debit and credit indicators.
const (
	Debit  = "D"
	Credit = "C"
)

// Signed returns the amount with its ledger sign.
func (t Transaction) Signed() float64 {
	if t.Indicator == Debit {
		return -t.Amount
	}
	return t.Amount
}

// TransferRequest carries the slots a transfer is executed with.
type TransferRequest struct {
	UserID          int64   `json:"user_id"`
	FromAccountID   int64   `json:"from_account_id"`
	ToAccountNumber string  `json:"to_account_number,omitempty"`
	BeneficiaryName string  `json:"beneficiary_name"`
	Amount          float64 `json:"amount"`
}

// TransferReceipt is returned by a successful transfer.
type TransferReceipt struct {
	TransferID string  `json:"transfer_id"`
	NewBalance float64 `json:"new_balance"`
}

// BalanceReceipt is returned by deposits and withdrawals.
type BalanceReceipt struct {
	NewBalance float64 `json:"new_balance"`
}

// LoanApplication is a submitted loan request.
type LoanApplication struct {
	ApplicationID  string    `json:"application_id"`
	UserID         int64     `json:"user_id"`
	Amount         float64   `json:"amount"`
	Years          int       `json:"years"`
	MonthlyPayment float64   `json:"monthly_payment"`
	Status         string    `json:"status"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// LoanStatusPending is the status of freshly submitted applications.
const LoanStatusPending = "PENDING"

// LoanRate is an indicative annual rate range, in percent.
type LoanRate struct {
	Type  string  `json:"type"`
	Label string  `json:"label"`
	Min   float64 `json:"min_rate"`
	Max   float64 `json:"max_rate"`
}

// LoanRates lists the published rate ranges.
var LoanRates = []LoanRate{
	{Type: "personnel", Label: "Crédit Personnel", Min: 6.5, Max: 8.5},
	{Type: "immobilier", Label: "Crédit Immobilier", Min: 5.0, Max: 7.0},
	{Type: "auto", Label: "Crédit Auto", Min: 6.0, Max: 8.0},
}
