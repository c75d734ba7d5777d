/*
Package ports defines the driven ports (interfaces) of the Teller dialogue engine.

These interfaces decouple the dialogue logic from external implementations, allowing
the engine to work with various storage backends, banking systems and language
components.

# Key Interfaces

  - StateStore: Persists and loads per-session dialogue State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - Banking: The banking collaborator (accounts, transfers, deposits, loans).
  - IntentClassifier / EntityExtractor: The language understanding strategies.
  - Responder: Produces replies for general conversation.
*/
package ports
