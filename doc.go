/*
Package teller is a French-language banking assistant engine.

It turns free-text customer messages into replies, running multi-turn
transactional flows (transfers, deposits, withdrawals, loan applications and
simulations, balance and history lookups) that collect the required details
slot by slot and ask for an explicit confirmation before any money moves.

# Concept

The engine is stateless between calls. Every conversation has a stored
dialogue state (current intent plus collected slots) that is loaded, updated
and saved under a per-session lock, so two messages of the same conversation
are never processed concurrently. The host (HTTP API, CLI, MCP server) only
passes messages in and replies out.

# Usage

	eng, err := teller.New()
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.ProcessMessage(ctx, domain.Message{
		SessionID: "session-123",
		UserID:    1,
		Text:      "Je veux faire un virement de 200 TND à Ahmed",
	})
	if err != nil {
		log.Printf("session store: %v", err)
	}
	fmt.Println(res.Response)

Backends are pluggable through options: WithBank for the banking system,
WithStore and WithLocker for session storage, WithClassifier and WithResponder
for language understanding and general conversation.
*/
package teller
