package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
)

// Mask replaces masked values.
const Mask = "***"

// DefaultPIIPatterns match the slots that identify a customer's money or payees.
var DefaultPIIPatterns = []string{
	`^` + domain.SlotBeneficiary + `$`,
	`^` + domain.SlotAmount + `$`,
	`account`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a read view that masks the entities whose key
// matches one of the patterns. Saves pass through untouched: the engine needs
// the real slot values, operators inspecting sessions do not.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns, err := compile(patternStrings)
	if err != nil {
		return nil, err
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.next.Save(ctx, sessionID, state)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return maskState(state, m.patterns), nil
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// MaskState returns a copy of state with PII entities masked.
func MaskState(state *domain.State, patternStrings []string) (*domain.State, error) {
	patterns, err := compile(patternStrings)
	if err != nil {
		return nil, err
	}
	return maskState(state, patterns), nil
}

// Helpers

func compile(patternStrings []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return patterns, nil
}

func maskState(state *domain.State, patterns []*regexp.Regexp) *domain.State {
	out := state.Snapshot()
	maskMap(out.Entities, patterns)
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchAny(k, patterns) {
			m[k] = Mask
			continue
		}

		// Nested maps are shared with the source state; mask a copy.
		if subMap, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(subMap))
			for sk, sv := range subMap {
				cp[sk] = sv
			}
			maskMap(cp, patterns)
			m[k] = cp
		}
	}
}

func matchAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
