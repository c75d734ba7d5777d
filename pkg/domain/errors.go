package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// Input errors. They are answered with a re-prompt, never surfaced as failures.
var (
	ErrEmptyMessage  = errors.New("empty message")
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidInput  = errors.New("input contains invalid UTF-8 sequences")
)

// Banking errors. Their text is shown to the customer verbatim.
var (
	ErrInsufficientFunds = errors.New("Solde insuffisant")
	ErrAccountNotFound   = errors.New("Compte non trouvé ou n'appartenant pas à l'utilisateur")
	ErrInvalidAmount     = errors.New("Le montant doit être positif")
	ErrInvalidDuration   = errors.New("La durée doit être comprise entre 1 et 30 ans")
	ErrInvalidRate       = errors.New("Le taux annuel ne peut pas être négatif")
	ErrBankUnavailable   = errors.New("Service bancaire momentanément indisponible")
)

// OperationError wraps an infrastructure failure of a banking operation.
// Error returns the customer-facing Reason; the cause stays reachable via Unwrap.
type OperationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *OperationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrBankUnavailable.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError wraps err as an unavailable-service failure of op.
func NewOperationError(op string, err error) error {
	return &OperationError{Op: op, Reason: ErrBankUnavailable.Error(), Err: err}
}
