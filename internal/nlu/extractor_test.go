package nlu_test

import (
	"testing"

	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Entities
	}{
		{
			name: "amount with comma decimal and currency",
			text: "100,50 TND",
			want: domain.Entities{domain.SlotAmount: 100.5},
		},
		{
			name: "amount with dinars",
			text: "Je veux virer 250 dinars",
			want: domain.Entities{domain.SlotAmount: 250.0},
		},
		{
			name: "first amount wins",
			text: "10 TND puis 20 TND",
			want: domain.Entities{domain.SlotAmount: 10.0},
		},
		{
			name: "account id fills both directions",
			text: "compte 12",
			want: domain.Entities{domain.SlotFromAccount: int64(12), domain.SlotToAccount: int64(12)},
		},
		{
			name: "account id with marker",
			text: "le compte n° 3 svp",
			want: domain.Entities{domain.SlotFromAccount: int64(3), domain.SlotToAccount: int64(3)},
		},
		{
			name: "no abbreviates numero and is not a refusal",
			text: "compte no 12",
			want: domain.Entities{domain.SlotFromAccount: int64(12), domain.SlotToAccount: int64(12)},
		},
		{
			name: "long account number is a destination number",
			text: "compte 12345678",
			want: domain.Entities{domain.SlotToAccountNumber: "12345678"},
		},
		{
			name: "simulation in one message",
			text: "Simule un crédit de 50000 TND sur 7 ans",
			want: domain.Entities{domain.SlotAmount: 50000.0, domain.SlotYears: 7},
		},
		{
			name: "duration with accented plural",
			text: "sur 10 années",
			want: domain.Entities{domain.SlotYears: 10},
		},
		{
			name: "duration singular",
			text: "1 année",
			want: domain.Entities{domain.SlotYears: 1},
		},
		{
			name: "amount and beneficiary",
			text: "500 TND à Ahmed",
			want: domain.Entities{domain.SlotAmount: 500.0, domain.SlotBeneficiary: "Ahmed"},
		},
		{
			name: "beneficiary keeps the first word only",
			text: "Effectue un virement de 1000 TND à Ahmed Ben Salah",
			want: domain.Entities{domain.SlotAmount: 1000.0, domain.SlotBeneficiary: "Ahmed"},
		},
		{
			name: "determiner after preposition is not a name",
			text: "virement vers le compte 12",
			want: domain.Entities{domain.SlotFromAccount: int64(12), domain.SlotToAccount: int64(12)},
		},
		{
			name: "account type",
			text: "solde du compte courant",
			want: domain.Entities{domain.SlotAccountType: "courant"},
		},
		{
			name: "affirmative",
			text: "oui",
			want: domain.Entities{domain.SlotConfirmation: "yes"},
		},
		{
			name: "affirmative phrase",
			text: "D'accord",
			want: domain.Entities{domain.SlotConfirmation: "yes"},
		},
		{
			name: "negative",
			text: "non merci",
			want: domain.Entities{domain.SlotConfirmation: "no"},
		},
		{
			name: "cancel keyword",
			text: "Stop",
			want: domain.Entities{domain.SlotConfirmation: "no"},
		},
		{
			name: "affirmative takes precedence",
			text: "oui, enfin non",
			want: domain.Entities{domain.SlotConfirmation: "yes"},
		},
		{
			name: "nothing to extract",
			text: "Bonjour",
			want: domain.Entities{},
		},
	}

	x := nlu.NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Extract(tt.text))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "credit pret operation", nlu.Fold("Crédit PRÊT opération"))
	assert.Equal(t, []string{"d", "accord", "a", "bientot"}, nlu.Tokens("D'accord, à bientôt !"))
}

func TestExtractor_Strip(t *testing.T) {
	x := nlu.NewExtractor()
	tests := []struct {
		text string
		want string
	}{
		{"compte 12", ""},
		{"500 TND à Heykel", ""},
		{"oui merci", "merci"},
		{"Quel est le solde du compte 12", "quel est le solde du"},
		{"Simule un crédit de 50000 TND sur 7 ans", "simule un credit de sur"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Strip(tt.text))
		})
	}
}
