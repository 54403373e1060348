package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig configures a RedisQueue. Stream and Group name the channel;
// they are configuration, not part of the contract.
type RedisConfig struct {
	URL      string
	Stream   string
	Group    string
	Consumer string
	// Block bounds how long Pull waits for messages. Zero selects a 5s
	// default; a negative value makes Pull return immediately.
	Block time.Duration
}

// RedisQueue implements Queue on a Redis stream with a consumer group,
// giving at-least-once delivery: entries stay pending until acknowledged.
type RedisQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
}

// NewRedisQueue connects to Redis and ensures the stream and consumer group
// exist. Call this once at startup from both the publisher and the worker.
func NewRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	block := cfg.Block
	if block == 0 {
		block = 5 * time.Second
	}

	q := &RedisQueue{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		block:    block,
	}
	if q.consumer == "" {
		q.consumer = "worker"
	}

	err = client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisQueue) Publish(ctx context.Context, data []byte) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", q.stream, err)
	}
	return nil
}

func (q *RedisQueue) Pull(ctx context.Context, max int) ([]Message, error) {
	res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(max),
		Block:    q.block,
	}).Result()
	if err != nil {
		// The blocking read expired because the stream was empty. Ok.
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("pull from %s: %w", q.stream, err)
	}

	var msgs []Message
	for _, stream := range res {
		for _, m := range stream.Messages {
			data, _ := m.Values["data"].(string)
			msgs = append(msgs, Message{ID: m.ID, Data: []byte(data)})
		}
	}
	return msgs, nil
}

func (q *RedisQueue) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := q.client.XAck(ctx, q.stream, q.group, ids...).Err(); err != nil {
		return fmt.Errorf("ack on %s: %w", q.stream, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
