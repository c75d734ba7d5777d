package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/teller/pkg/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amounts are shown with thousands separators and millimes: 12,345.500 TND.
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount in dinars, without the currency.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.3f", domain.Round3(v))
}

// FormatTND renders an amount followed by the currency code.
func FormatTND(v float64) string {
	return FormatAmount(v) + " TND"
}

// formatAccounts renders the account list shown with account prompts.
func formatAccounts(accounts []domain.Account) string {
	var b strings.Builder
	for _, a := range accounts {
		fmt.Fprintf(&b, "\n• **%s** (id %d, n° %s) : %s", a.Label, a.ID, a.Number, FormatTND(a.Balance))
	}
	return b.String()
}

// formatBalances renders the balance summary.
func formatBalances(accounts []domain.Account) string {
	var b strings.Builder
	b.WriteString("💰 **Vos soldes actuels:**\n")
	var total float64
	for _, a := range accounts {
		total += a.Balance
		status := "✅"
		if a.Balance < 0 {
			status = "⚠️"
		}
		fmt.Fprintf(&b, "%s **%s**: %s\n", status, a.Label, FormatTND(a.Balance))
	}
	fmt.Fprintf(&b, "\n📊 **Solde total**: %s", FormatTND(total))
	return b.String()
}

// formatTransactions renders a short ledger, newest first.
func formatTransactions(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString("📋 **Vos dernières opérations:**\n")
	for _, t := range txs {
		sign := "-"
		if t.Indicator == domain.Credit {
			sign = "+"
		}
		fmt.Fprintf(&b, "• %s : %s%s - %s\n", t.Date.Format("02/01/2006"), sign, FormatTND(t.Amount), t.Description)
	}
	b.WriteString("\nPour consulter votre historique complet, utilisez l'onglet 'Transactions' de votre tableau de bord.")
	return b.String()
}

func formatRate(annual float64) string {
	return fmt.Sprintf("%.2f %%", annual*100)
}
