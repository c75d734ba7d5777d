package nlu

import (
	"fmt"

	"github.com/aretw0/teller/pkg/ports"
)

// Strategy names a classification strategy.
type Strategy string

const (
	StrategyRules Strategy = "rules"
	StrategyBayes Strategy = "bayes"
)

// NewClassifier builds the classifier for the given strategy.
// Bayes options are ignored by the rule strategy.
func NewClassifier(strategy Strategy, opts ...BayesOption) (ports.IntentClassifier, error) {
	switch strategy {
	case "", StrategyRules:
		return NewRuleClassifier()
	case StrategyBayes:
		return NewNaiveBayes(opts...)
	}
	return nil, fmt.Errorf("unknown classifier strategy %q", strategy)
}
