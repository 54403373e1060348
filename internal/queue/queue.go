// Package queue provides a durable at-least-once message channel for the
// enrichment pipeline. A message may be delivered more than once; consumers
// must tolerate duplicate processing.
package queue

import (
	"context"
)

// Message is one delivered payload. ID doubles as the acknowledgement
// handle.
type Message struct {
	ID   string
	Data []byte
}

// Queue is the channel boundary between the API tier and the worker.
type Queue interface {
	// Publish appends a payload to the channel.
	Publish(ctx context.Context, data []byte) error
	// Pull returns up to max pending messages, blocking at most for the
	// channel's bounded wait. An empty result means no work right now.
	Pull(ctx context.Context, max int) ([]Message, error)
	// Ack marks the given messages as handled so they are not redelivered.
	Ack(ctx context.Context, ids ...string) error
}
