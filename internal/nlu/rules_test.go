package nlu_test

import (
	"testing"

	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleClassifier_Classify(t *testing.T) {
	c, err := nlu.NewRuleClassifier()
	require.NoError(t, err)

	tests := []struct {
		text string
		want domain.Intent
	}{
		{"Quel est mon solde", domain.IntentBalance},
		{"Affiche mes dernières transactions", domain.IntentTransactions},
		{"Historique de mes opérations", domain.IntentTransactions},
		{"Je veux faire un virement", domain.IntentTransfer},
		{"Transférer 200 TND à Sami", domain.IntentTransfer},
		{"Je veux déposer 300 TND", domain.IntentDeposit},
		{"Retirer 100 dinars", domain.IntentWithdrawal},
		{"Simule un crédit de 50000 TND sur 7 ans", domain.IntentLoanSimulate},
		{"Je voudrais un prêt immobilier", domain.IntentLoanApply},
		{"J'ai besoin d'aide", domain.IntentAssistance},
		{"Bonjour", domain.IntentGreeting},
		{"Au revoir", domain.IntentGoodbye},
		{"Merci", domain.IntentGoodbye},
		{"Hey !", domain.IntentGreeting},
		{"Combien d'argent j'ai ?", domain.IntentBalance},
		{"Je veux retirer de l'argent", domain.IntentWithdrawal},
		{"500 TND à Heykel", domain.IntentGeneral},
		{"Envoyer 50 TND à Byron", domain.IntentTransfer},
		{"compte 12", domain.IntentGeneral},
		{"500 TND à Ahmed", domain.IntentGeneral},
		{"oui", domain.IntentGeneral},
		{"Quelle belle journée", domain.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.want, got.Intent)
			assert.Equal(t, 0.8, got.Confidence)
		})
	}
}

func TestRuleClassifier_OrderMatters(t *testing.T) {
	c, err := nlu.NewRuleClassifier()
	require.NoError(t, err)

	// Balance rules precede history rules.
	assert.Equal(t, domain.IntentBalance, c.Classify("mon solde et mes transactions").Intent)
	// Transfer rules precede loan rules.
	assert.Equal(t, domain.IntentTransfer, c.Classify("virement pour rembourser mon crédit").Intent)
	// Simulation rules precede application rules.
	assert.Equal(t, domain.IntentLoanSimulate, c.Classify("simulation de prêt").Intent)
}

func TestLoadRules_ExactKeywords(t *testing.T) {
	c, err := nlu.LoadRules([]byte("confidence: 0.5\nrules:\n  - intent: salutation\n    keywords: [\"=hey\", bonj]\n"))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentGreeting, c.Classify("hey").Intent)
	assert.Equal(t, domain.IntentGeneral, c.Classify("Heykel").Intent)
	assert.Equal(t, domain.IntentGreeting, c.Classify("Bonjour").Intent, "plain keywords match by prefix")
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := nlu.LoadRules([]byte("confidence: [oops"))
	assert.Error(t, err)

	_, err = nlu.LoadRules([]byte("confidence: 0.8\nrules:\n  - intent: nope\n    keywords: [x]\n"))
	assert.ErrorContains(t, err, "unknown intent")

	_, err = nlu.LoadRules([]byte("confidence: 0\nrules: []\n"))
	assert.ErrorContains(t, err, "confidence")
}

func TestLoadRules_Custom(t *testing.T) {
	c, err := nlu.LoadRules([]byte("confidence: 0.5\nrules:\n  - intent: salutation\n    keywords: [yo]\n"))
	require.NoError(t, err)

	assert.Equal(t, domain.Classification{Intent: domain.IntentGreeting, Confidence: 0.5}, c.Classify("Yo !"))
	assert.Equal(t, domain.IntentGeneral, c.Classify("bonjour").Intent)
}
