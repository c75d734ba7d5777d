package domain

import "github.com/mitchellh/mapstructure"

// Slot names shared by the extractor, the flows and the persisted state.
const (
	SlotAmount              = "montant"
	SlotBeneficiary         = "beneficiaire"
	SlotYears               = "duree_annees"
	SlotFromAccount         = "from_account_id"
	SlotToAccount           = "to_account_id"
	SlotToAccountNumber     = "to_account_number"
	SlotAccountType         = "type_compte"
	SlotConfirmation        = "confirmation"
	SlotConfirmationPending = "confirmation_pending"
)

// Confirmation is the value of the confirmation slot.
type Confirmation string

const (
	ConfirmYes Confirmation = "yes"
	ConfirmNo  Confirmation = "no"
)

// Entities is a sparse slot mapping. A missing key means "not mentioned",
// never "explicitly empty".
//
// Values restored from JSON stores come back as float64 or json.Number, so the
// typed accessors decode weakly instead of asserting concrete types.
type Entities map[string]any

// Has reports whether the slot is present.
func (e Entities) Has(slot string) bool {
	v, ok := e[slot]
	return ok && v != nil
}

// Float returns the slot as a decimal value.
func (e Entities) Float(slot string) (float64, bool) {
	if !e.Has(slot) {
		return 0, false
	}
	var out float64
	if err := mapstructure.WeakDecode(e[slot], &out); err != nil {
		return 0, false
	}
	return out, true
}

// Int returns the slot as an integer value.
func (e Entities) Int(slot string) (int64, bool) {
	if !e.Has(slot) {
		return 0, false
	}
	var out int64
	if err := mapstructure.WeakDecode(e[slot], &out); err != nil {
		return 0, false
	}
	return out, true
}

// String returns the slot as a string value.
func (e Entities) String(slot string) (string, bool) {
	if !e.Has(slot) {
		return "", false
	}
	var out string
	if err := mapstructure.WeakDecode(e[slot], &out); err != nil {
		return "", false
	}
	return out, out != ""
}

// Bool returns the slot as a boolean, false when absent.
func (e Entities) Bool(slot string) bool {
	if !e.Has(slot) {
		return false
	}
	var out bool
	if err := mapstructure.WeakDecode(e[slot], &out); err != nil {
		return false
	}
	return out
}

// Confirmation returns the confirmation slot if it holds a known value.
func (e Entities) Confirmation() (Confirmation, bool) {
	s, ok := e.String(SlotConfirmation)
	if !ok {
		return "", false
	}
	switch c := Confirmation(s); c {
	case ConfirmYes, ConfirmNo:
		return c, true
	}
	return "", false
}

// Merge copies every slot of other into e, overwriting existing values.
func (e Entities) Merge(other Entities) {
	for k, v := range other {
		e[k] = v
	}
}

// Clone returns a shallow copy. Slot values are scalars.
func (e Entities) Clone() Entities {
	out := make(Entities, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Drop removes the given slots.
func (e Entities) Drop(slots ...string) {
	for _, s := range slots {
		delete(e, s)
	}
}
