package domain

// Intent is a label from the fixed intent taxonomy.
// The empty Intent means "no flow in progress".
type Intent string

const (
	IntentNone         Intent = ""
	IntentBalance      Intent = "consultation_solde"
	IntentTransactions Intent = "consultation_transactions"
	IntentTransfer     Intent = "virement"
	IntentLoanApply    Intent = "demande_credit"
	IntentLoanSimulate Intent = "simulation_credit"
	IntentDeposit      Intent = "depot"
	IntentWithdrawal   Intent = "retrait"
	IntentAssistance   Intent = "assistance"
	IntentGreeting     Intent = "salutation"
	IntentGoodbye      Intent = "au_revoir"
	IntentGeneral      Intent = "conversation_generale"
	IntentUnknown      Intent = "unknown"
)

// Intents lists the taxonomy in declaration order.
var Intents = []Intent{
	IntentBalance,
	IntentTransactions,
	IntentTransfer,
	IntentLoanApply,
	IntentLoanSimulate,
	IntentDeposit,
	IntentWithdrawal,
	IntentAssistance,
	IntentGreeting,
	IntentGoodbye,
	IntentGeneral,
	IntentUnknown,
}

// IsCatchAll reports whether the intent is the general/unknown bucket.
// Catch-all intents never start or supersede a flow.
func (i Intent) IsCatchAll() bool {
	return i == IntentNone || i == IntentGeneral || i == IntentUnknown
}

// IsConversational reports whether the intent is answered in a single turn
// with a canned reply and never leaves a flow active.
func (i Intent) IsConversational() bool {
	switch i {
	case IntentAssistance, IntentGreeting, IntentGoodbye:
		return true
	}
	return false
}

// Valid reports whether the intent belongs to the taxonomy.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Classification is the output of an intent classifier.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
