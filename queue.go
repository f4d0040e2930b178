package mailreg

import "context"

// QueueService consumes external maintenance triggers, such as requests to
// run the expired-subscriber sweep.
type QueueService interface {
	Consume(ctx context.Context, topic string) (<-chan []byte, error)
}
