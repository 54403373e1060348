package statuslog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicker_RecordAndLast(t *testing.T) {
	ticker := New()
	assert.Empty(t, ticker.Last())

	ticker.Record("pulling messages")
	ticker.Record("pulled 3 messages")
	assert.Equal(t, "pulled 3 messages", ticker.Last())
}

func TestTicker_SubscribeReceivesUpdates(t *testing.T) {
	ticker := New()
	ch := ticker.Subscribe()

	ticker.Record("hello")

	select {
	case msg := <-ch:
		assert.Equal(t, "hello", msg)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive update")
	}
}

func TestTicker_SlowSubscriberDoesNotBlock(t *testing.T) {
	ticker := New()
	_ = ticker.Subscribe()

	// Overflow the subscriber buffer; Record must never block.
	for i := 0; i < 100; i++ {
		ticker.Record("msg")
	}
	assert.Equal(t, "msg", ticker.Last())
}
