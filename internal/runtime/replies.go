package runtime

import (
	"context"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/aretw0/teller/pkg/ports"
)

// StaticResponder answers general conversation with canned texts.
type StaticResponder struct{}

var _ ports.Responder = StaticResponder{}

// Reply implements ports.Responder.
func (StaticResponder) Reply(_ context.Context, req ports.ReplyRequest) (string, error) {
	if req.Intent == domain.IntentUnknown {
		return MsgClarify, nil
	}
	return MsgGeneral, nil
}
