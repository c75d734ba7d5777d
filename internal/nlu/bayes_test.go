package nlu_test

import (
	"testing"

	"github.com/aretw0/teller/internal/nlu"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveBayes_TrainingPhrases(t *testing.T) {
	nb, err := nlu.NewNaiveBayes()
	require.NoError(t, err)

	tests := []struct {
		text string
		want domain.Intent
	}{
		{"affiche mes transactions", domain.IntentTransactions},
		{"bonjour", domain.IntentGreeting},
		{"transférer des fonds", domain.IntentTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := nb.Classify(tt.text)
			assert.Equal(t, tt.want, got.Intent)
			assert.GreaterOrEqual(t, got.Confidence, nlu.DefaultThreshold)
		})
	}
}

func TestNaiveBayes_UnknownBelowThreshold(t *testing.T) {
	nb, err := nlu.NewNaiveBayes()
	require.NoError(t, err)

	got := nb.Classify("xyzzy qwerty")
	assert.Equal(t, domain.IntentUnknown, got.Intent)
	assert.Less(t, got.Confidence, nlu.DefaultThreshold)

	assert.Equal(t, domain.IntentUnknown, nb.Classify("").Intent)
	assert.Equal(t, domain.IntentUnknown, nb.Classify("le la de").Intent, "stopwords only")
}

func TestNaiveBayes_ThresholdOption(t *testing.T) {
	nb, err := nlu.NewNaiveBayes(nlu.WithThreshold(0.999))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentUnknown, nb.Classify("bonjour").Intent)
}

func TestNaiveBayes_PosteriorsSumToOne(t *testing.T) {
	nb, err := nlu.NewNaiveBayes()
	require.NoError(t, err)

	var sum float64
	for _, p := range nb.Posteriors("simuler un crédit sur 5 ans") {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNaiveBayes_Deterministic(t *testing.T) {
	a, err := nlu.NewNaiveBayes()
	require.NoError(t, err)
	b, err := nlu.NewNaiveBayes()
	require.NoError(t, err)

	for _, text := range []string{"historique bancaire", "demande de financement", "retirer de l'argent"} {
		assert.Equal(t, a.Classify(text), b.Classify(text))
	}
}

func TestTrainNaiveBayes_CustomCorpus(t *testing.T) {
	nb, err := nlu.TrainNaiveBayes([]nlu.Example{
		{Intent: domain.IntentTransfer, Text: "faire virement"},
		{Intent: domain.IntentTransfer, Text: "virement urgent"},
		{Intent: domain.IntentBalance, Text: "voir solde"},
		{Intent: domain.IntentBalance, Text: "solde compte"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentTransfer, nb.Classify("un virement svp").Intent)
	assert.Equal(t, domain.IntentBalance, nb.Classify("mon solde").Intent)

	_, err = nlu.TrainNaiveBayes(nil)
	assert.Error(t, err)
	_, err = nlu.TrainNaiveBayes([]nlu.Example{{Intent: domain.IntentBalance, Text: "solde"}}, nlu.WithSmoothing(0))
	assert.Error(t, err)
}

func TestNewClassifier(t *testing.T) {
	rules, err := nlu.NewClassifier(nlu.StrategyRules)
	require.NoError(t, err)
	assert.IsType(t, &nlu.RuleClassifier{}, rules)

	bayes, err := nlu.NewClassifier(nlu.StrategyBayes, nlu.WithThreshold(0.4))
	require.NoError(t, err)
	assert.IsType(t, &nlu.NaiveBayes{}, bayes)

	_, err = nlu.NewClassifier("neural")
	assert.Error(t, err)
}
