// Package runtime implements the dialogue orchestrator and the transactional
// flows of the banking assistant.
//
// Each turn is sanitized, classified and mined for slots. A recognized intent
// that differs from the flow in progress starts a new flow and drops whatever
// the previous one collected. The active flow then either prompts for its next
// missing slot, restates the pending operation and waits for an explicit
// "oui", or executes through ports.Banking and returns the session to idle.
//
// Money-moving flows never call the bank before a confirmation turn that
// follows the restatement of the exact operation being executed.
package runtime
