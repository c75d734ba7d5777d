package nlu

import (
	_ "embed"
	"fmt"

	"github.com/aretw0/teller/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// RuleConfig is the YAML shape of a rule set.
type RuleConfig struct {
	Confidence float64       `yaml:"confidence"`
	Fallback   domain.Intent `yaml:"fallback"`
	Rules      []struct {
		Intent   domain.Intent `yaml:"intent"`
		Keywords []string      `yaml:"keywords"`
	} `yaml:"rules"`
}

type rule struct {
	intent   domain.Intent
	keywords []keyword
}

// RuleClassifier evaluates ordered keyword rules. It is the default strategy.
type RuleClassifier struct {
	rules      []rule
	confidence float64
	fallback   domain.Intent
}

// NewRuleClassifier loads the built-in rule set.
func NewRuleClassifier() (*RuleClassifier, error) {
	return LoadRules(defaultRules)
}

// LoadRules builds a classifier from a YAML rule set.
func LoadRules(data []byte) (*RuleClassifier, error) {
	var cfg RuleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse intent rules: %w", err)
	}
	if cfg.Fallback == "" {
		cfg.Fallback = domain.IntentGeneral
	}
	if cfg.Confidence <= 0 || cfg.Confidence > 1 {
		return nil, fmt.Errorf("rule confidence must be in (0, 1], got %v", cfg.Confidence)
	}

	c := &RuleClassifier{confidence: cfg.Confidence, fallback: cfg.Fallback}
	for i, r := range cfg.Rules {
		if !r.Intent.Valid() {
			return nil, fmt.Errorf("rule %d: unknown intent %q", i, r.Intent)
		}
		compiled := rule{intent: r.Intent}
		for _, raw := range r.Keywords {
			if k := newKeyword(raw); len(k.parts) > 0 {
				compiled.keywords = append(compiled.keywords, k)
			}
		}
		if len(compiled.keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, r.Intent)
		}
		c.rules = append(c.rules, compiled)
	}
	return c, nil
}

// Classify returns the intent of the first matching rule.
func (c *RuleClassifier) Classify(text string) domain.Classification {
	tokens := Tokens(text)
	for _, r := range c.rules {
		if anyMatch(r.keywords, tokens) {
			return domain.Classification{Intent: r.intent, Confidence: c.confidence}
		}
	}
	return domain.Classification{Intent: c.fallback, Confidence: c.confidence}
}
