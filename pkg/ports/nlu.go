package ports

import (
	"context"

	"github.com/aretw0/teller/pkg/domain"
)

// IntentClassifier maps a message to an intent of the taxonomy.
type IntentClassifier interface {
	Classify(text string) domain.Classification
}

// EntityExtractor pulls slot values out of a message.
// The result only contains the slots actually found.
type EntityExtractor interface {
	Extract(text string) domain.Entities
}

// Responder writes replies for messages outside any transactional flow.
type Responder interface {
	Reply(ctx context.Context, req ReplyRequest) (string, error)
}

// ReplyRequest is what a Responder gets to work with.
type ReplyRequest struct {
	Text   string
	Intent domain.Intent
	UserID int64
}
