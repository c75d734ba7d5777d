package ports

import (
	"context"

	"github.com/aretw0/teller/pkg/domain"
)

// TurnProcessor is the host-facing side of the engine used by transport adapters.
type TurnProcessor interface {
	ProcessMessage(ctx context.Context, msg domain.Message) (domain.TurnResult, error)
}
