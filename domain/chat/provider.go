package chat

import (
	"context"
	"errors"
)

// ErrEmptyReply is returned when a provider streamed nothing.
var ErrEmptyReply = errors.New("chat: empty reply")

// Provider streams a chat completion. yield receives fragments in arrival
// order; Stream returns once the reply is complete or ctx is done.
type Provider interface {
	Name() string
	Stream(ctx context.Context, system string, history []Message, yield func(string)) error
}
