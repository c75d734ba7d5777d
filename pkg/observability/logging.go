package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/teller/pkg/domain"
)

// LoggingHooks writes one structured line per event. Slot values are never
// logged.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.DebugContext(ctx, "turn",
				"session_id", e.SessionID,
				"intent", e.Intent,
				"confidence", e.Confidence,
				"action_required", e.ActionRequired,
				"duration", e.Duration,
			)
		},
		OnFlowEnd: func(ctx context.Context, e *domain.FlowEvent) {
			logger.InfoContext(ctx, "flow_end",
				"session_id", e.SessionID,
				"intent", e.Intent,
				"outcome", e.Outcome,
			)
		},
		OnOperation: func(ctx context.Context, e *domain.OperationEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "operation_failed",
					"session_id", e.SessionID,
					"operation", e.Operation,
					"error", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "operation",
				"session_id", e.SessionID,
				"operation", e.Operation,
				"duration", e.Duration,
			)
		},
	}
}
