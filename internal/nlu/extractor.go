package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/teller/pkg/domain"
)

var (
	amountPattern        = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:tnd|dinars?|dt)?`)
	yearsPattern         = regexp.MustCompile(`(?i)(\d+)\s*(?:années|annees|année|annee|ans|an)(?:[^\p{L}\p{N}]|$)`)
	accountIDPattern     = regexp.MustCompile(`(?i)\b(?:compte|id)\s*(?:n°|no\.?|num(?:é|e)ro|#|:)?\s*(\d{1,7})(?:\D|$)`)
	accountNumberPattern = regexp.MustCompile(`(?i)(?:num(?:é|e)ro\s+de\s+compte|compte)\s*(?:n°|no\.?|#|:)?\s*(\d{8,})`)
	beneficiaryPattern   = regexp.MustCompile(`(?i)(?:^|[\s,;:])(?:à|pour|vers)\s+(\p{L}[\p{L}'’-]*)`)
)

// Words after a preposition that cannot be a beneficiary name.
var beneficiaryStopwords = map[string]bool{
	"mon": true, "ma": true, "mes": true, "le": true, "la": true, "les": true, "l": true,
	"un": true, "une": true, "des": true, "du": true, "de": true, "son": true, "sa": true,
	"ses": true, "votre": true, "vos": true, "notre": true, "nos": true, "moi": true,
	"toi": true, "lui": true, "ce": true, "cet": true, "cette": true, "quel": true,
	"quelle": true, "payer": true, "partir": true, "combien": true, "compte": true,
}

var (
	affirmativeWords   = []string{"oui", "ok", "okay", "ouais", "yes", "confirme", "confirmer", "confirmez", "valide", "valider", "validez", "parfait", "exact", "exactement", "bien sur"}
	affirmativePhrases = []keyword{newKeyword("d'accord"), newKeyword("vas-y"), newKeyword("allez-y"), newKeyword("c'est bon")}
	negativeWords      = []string{"non", "annule", "annuler", "annulez", "stop", "refuse", "refuser", "arrete", "arreter", "abandonne", "abandonner", "pas question"}
)

var confirmationWords = toSet(append(append([]string(nil), affirmativeWords...), negativeWords...)...)

// Extractor is the pattern-based EntityExtractor.
type Extractor struct{}

// NewExtractor returns the French extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Extract returns the slots found in text.
func (x *Extractor) Extract(text string) domain.Entities {
	out := domain.Entities{}
	var reserved []span

	if m := accountNumberPattern.FindStringSubmatchIndex(text); m != nil {
		out[domain.SlotToAccountNumber] = text[m[2]:m[3]]
		reserved = append(reserved, span{m[2], m[3]})
	}

	if m := accountIDPattern.FindStringSubmatchIndex(text); m != nil {
		if id, err := strconv.ParseInt(text[m[2]:m[3]], 10, 64); err == nil {
			out[domain.SlotFromAccount] = id
			out[domain.SlotToAccount] = id
			reserved = append(reserved, span{m[2], m[3]})
		}
	}

	if m := yearsPattern.FindStringSubmatchIndex(text); m != nil {
		if years, err := strconv.Atoi(text[m[2]:m[3]]); err == nil {
			out[domain.SlotYears] = years
			reserved = append(reserved, span{m[2], m[3]})
		}
	}

	for _, m := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		candidate := span{m[2], m[3]}
		if overlapsAny(candidate, reserved) {
			continue
		}
		raw := strings.Replace(text[m[2]:m[3]], ",", ".", 1)
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			out[domain.SlotAmount] = amount
		}
		break
	}

	for _, m := range beneficiaryPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if beneficiaryStopwords[Fold(name)] {
			continue
		}
		out[domain.SlotBeneficiary] = name
		break
	}

	tokens := Tokens(text)
	switch {
	case containsAny(tokens, "courant"):
		out[domain.SlotAccountType] = "courant"
	case containsAny(tokens, "epargne"):
		out[domain.SlotAccountType] = "epargne"
	}

	if c, ok := confirmation(tokens); ok {
		out[domain.SlotConfirmation] = string(c)
	}

	return out
}

// Strip returns the folded tokens of text left once the amounts, durations,
// account references, beneficiaries and yes/no words are removed.
func (x *Extractor) Strip(text string) string {
	for _, p := range []*regexp.Regexp{accountNumberPattern, accountIDPattern, yearsPattern, amountPattern, beneficiaryPattern} {
		text = p.ReplaceAllString(text, " ")
	}
	var kept []string
	for _, tok := range Tokens(text) {
		if !confirmationWords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// confirmation checks affirmative keywords before negative ones, so a message
// holding both resolves to yes.
func confirmation(tokens []string) (domain.Confirmation, bool) {
	if containsAny(tokens, affirmativeWords...) || anyMatch(affirmativePhrases, tokens) {
		return domain.ConfirmYes, true
	}
	if containsAny(tokens, negativeWords...) {
		return domain.ConfirmNo, true
	}
	return "", false
}

// containsAny reports whether tokens hold one of words. A multi-word entry
// matches a contiguous token sequence.
func containsAny(tokens []string, words ...string) bool {
	for _, w := range words {
		k := newKeyword(w)
		if len(k.parts) > 1 {
			if k.matches(tokens) {
				return true
			}
			continue
		}
		for _, t := range tokens {
			if t == w {
				return true
			}
		}
	}
	return false
}

func overlapsAny(s span, others []span) bool {
	for _, o := range others {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}
