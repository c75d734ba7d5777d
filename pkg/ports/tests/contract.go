package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BankFixture describes the seed data a Banking implementation is tested against.
type BankFixture struct {
	// UserID owns AccountID, which must hold at least 1000.
	UserID    int64
	AccountID int64
	// ForeignAccountID belongs to another customer.
	ForeignAccountID int64
}

// BankingContractTest is a reusable test suite that verifies if an adapter complies with ports.Banking.
func BankingContractTest(t *testing.T, bank ports.Banking, fx BankFixture) {
	t.Helper()
	ctx := context.Background()

	balanceOf := func(t *testing.T) float64 {
		t.Helper()
		list, err := bank.Accounts(ctx, fx.UserID)
		require.NoError(t, err)
		acc, ok := list.Find(fx.AccountID)
		require.True(t, ok, "fixture account must be listed for its owner")
		return acc.Balance
	}

	t.Run("Accounts", func(t *testing.T) {
		list, err := bank.Accounts(ctx, fx.UserID)
		require.NoError(t, err)
		require.NotEmpty(t, list.Accounts)

		var sum float64
		for _, a := range list.Accounts {
			sum += a.Balance
		}
		assert.InDelta(t, sum, list.TotalBalance, 0.001)

		_, foreign := list.Find(fx.ForeignAccountID)
		assert.False(t, foreign, "accounts of other customers must not be listed")
	})

	t.Run("Deposit", func(t *testing.T) {
		before := balanceOf(t)
		receipt, err := bank.Deposit(ctx, fx.AccountID, 100.5)
		require.NoError(t, err)
		assert.InDelta(t, before+100.5, receipt.NewBalance, 0.001)
	})

	t.Run("Withdraw", func(t *testing.T) {
		before := balanceOf(t)
		receipt, err := bank.Withdraw(ctx, fx.AccountID, 50)
		require.NoError(t, err)
		assert.InDelta(t, before-50, receipt.NewBalance, 0.001)

		_, err = bank.Withdraw(ctx, fx.AccountID, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = bank.Withdraw(ctx, fx.AccountID, receipt.NewBalance+1)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("Transfer", func(t *testing.T) {
		before := balanceOf(t)
		receipt, err := bank.Transfer(ctx, domain.TransferRequest{
			UserID:          fx.UserID,
			FromAccountID:   fx.AccountID,
			BeneficiaryName: "Ahmed",
			Amount:          200,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.TransferID)
		assert.InDelta(t, before-200, receipt.NewBalance, 0.001)

		txs, err := bank.RecentTransactions(ctx, fx.UserID, fx.AccountID, 5)
		require.NoError(t, err)
		require.NotEmpty(t, txs)
		assert.True(t, strings.HasPrefix(txs[0].Description, "VIREMENT vers Ahmed"), "newest line is the transfer debit")
		assert.Equal(t, domain.Debit, txs[0].Indicator)
	})

	t.Run("Transfer Rejections", func(t *testing.T) {
		_, err := bank.Transfer(ctx, domain.TransferRequest{
			UserID:          fx.UserID,
			FromAccountID:   fx.ForeignAccountID,
			BeneficiaryName: "Ahmed",
			Amount:          1,
		})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)

		_, err = bank.Transfer(ctx, domain.TransferRequest{
			UserID:          fx.UserID,
			FromAccountID:   fx.AccountID,
			BeneficiaryName: "Ahmed",
			Amount:          -5,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = bank.Transfer(ctx, domain.TransferRequest{
			UserID:          fx.UserID,
			FromAccountID:   fx.AccountID,
			BeneficiaryName: "Ahmed",
			Amount:          1e12,
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	})

	t.Run("SimulateLoan", func(t *testing.T) {
		sim, err := bank.SimulateLoan(ctx, 50000, 7, 0.07)
		require.NoError(t, err)
		want, _ := domain.SimulateLoan(50000, 7, 0.07)
		assert.Equal(t, want, sim)
	})

	t.Run("ApplyForLoan", func(t *testing.T) {
		app, err := bank.ApplyForLoan(ctx, fx.UserID, 20000, 5)
		require.NoError(t, err)
		assert.NotEmpty(t, app.ApplicationID)
		assert.Equal(t, domain.LoanStatusPending, app.Status)
		assert.Equal(t, domain.MonthlyPayment(20000, 5, domain.DefaultAnnualRate), app.MonthlyPayment)
	})
}
