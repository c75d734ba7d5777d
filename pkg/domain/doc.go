/*
Package domain contains the core domain models of the Teller dialogue engine.

It defines the intent taxonomy, the slot vocabulary shared by extraction and flows,
the per-session dialogue State and the TurnResult returned to hosts. It also carries
the banking value types exchanged with the Banking port and the loan amortization
arithmetic used by both simulation and application flows. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Intent: A label from the fixed taxonomy (consultation_solde, virement, ...).
  - Entities: The sparse slot mapping accumulated across turns.
  - State: The per-session record {current intent, accumulated entities}.
  - TurnResult: The structured answer for one message.
*/
package domain
