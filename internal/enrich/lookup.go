// Package enrich implements the background book enrichment pipeline: the
// API tier enqueues a request after each create, a worker pulls requests in
// batches, looks the book up in the metadata API, merges the candidates into
// the stored record and acknowledges the batch.
package enrich

import (
	"context"
	"fmt"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/googlebooks"
	"bookshelf/internal/queue"
	"bookshelf/internal/statuslog"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	defaultBatchSize = 3
	retryPause       = 250 * time.Millisecond
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// queueMessage is the wire payload published to the queue.
type queueMessage struct {
	BookID int64 `json:"BookId"`
}

func encodeRequest(bookID int64) ([]byte, error) {
	data, err := jsonAPI.Marshal(queueMessage{BookID: bookID})
	if err != nil {
		return nil, fmt.Errorf("encode enrichment request: %w", err)
	}
	return data, nil
}

// Publisher is the API-tier end of the pipeline. It only needs the queue,
// not the store or the metadata source.
type Publisher struct {
	queue queue.Queue
}

func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{queue: q}
}

// Enqueue publishes a request asking for the book to be enriched.
func (p *Publisher) Enqueue(ctx context.Context, bookID int64) error {
	data, err := encodeRequest(bookID)
	if err != nil {
		return err
	}
	return p.queue.Publish(ctx, data)
}

// Metadata searches an external source for candidate volume records.
type Metadata interface {
	Search(ctx context.Context, query string) ([]googlebooks.VolumeInfo, error)
}

// Lookup owns both ends of the pipeline: Enqueue on the publish side and
// PullLoop on the worker side.
type Lookup struct {
	queue     queue.Queue
	store     book.Store
	meta      Metadata
	log       logrus.FieldLogger
	status    *statuslog.Ticker
	batchSize int
}

func NewLookup(q queue.Queue, store book.Store, meta Metadata, log logrus.FieldLogger, status *statuslog.Ticker) *Lookup {
	return &Lookup{
		queue:     q,
		store:     store,
		meta:      meta,
		log:       log,
		status:    status,
		batchSize: defaultBatchSize,
	}
}

// Enqueue publishes a request asking for the book to be enriched.
func (l *Lookup) Enqueue(ctx context.Context, bookID int64) error {
	data, err := encodeRequest(bookID)
	if err != nil {
		return err
	}
	return l.queue.Publish(ctx, data)
}

// PullLoop pulls and processes batches until ctx is cancelled. No error
// escaping a single pull-process-ack cycle ends the loop: a bad message or
// a transient downstream outage is logged and the next cycle begins.
func (l *Lookup) PullLoop(ctx context.Context) {
	for ctx.Err() == nil {
		if err := l.pullOnce(ctx); err != nil && ctx.Err() == nil {
			l.log.WithError(err).Error("pull cycle failed")
			// A failed pull returns immediately, unlike an empty one which
			// blocks. Pause so a dead queue does not spin the loop hot.
			select {
			case <-ctx.Done():
			case <-time.After(retryPause):
			}
		}
	}
	l.status.Record("pull loop stopped")
}

// pullOnce runs one pull-process-ack cycle. Messages in the batch are
// processed one by one; failures are logged per message and the whole batch
// is acknowledged afterwards. A message that failed to decode is therefore
// acknowledged too and will not be redelivered.
func (l *Lookup) pullOnce(ctx context.Context) error {
	l.status.Record("pulling messages")
	msgs, err := l.queue.Pull(ctx, l.batchSize)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		l.status.Record("pulled no messages")
		return nil
	}
	l.status.Record(fmt.Sprintf("pulled %d messages", len(msgs)))
	messagesPulled.Add(float64(len(msgs)))

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)

		var qm queueMessage
		if err := jsonAPI.Unmarshal(m.Data, &qm); err != nil {
			decodeFailures.Inc()
			l.log.WithError(err).WithField("message_id", m.ID).Error("undecodable message, skipping")
			continue
		}
		if err := l.process(ctx, qm.BookID); err != nil {
			processFailures.Inc()
			l.log.WithError(err).WithField("book_id", qm.BookID).Error("error processing book")
			continue
		}
		booksProcessed.Inc()
	}
	return l.queue.Ack(ctx, ids...)
}

// process reads the book, fetches candidate metadata by title and merges it
// into the stored record. On a fetch error the store is left untouched.
func (l *Lookup) process(ctx context.Context, bookID int64) error {
	b, err := l.store.Read(ctx, bookID)
	if err != nil {
		return fmt.Errorf("read book %d: %w", bookID, err)
	}
	l.status.Record(fmt.Sprintf("processing %q", b.Title))

	infos, err := l.meta.Search(ctx, b.Title)
	if err != nil {
		return fmt.Errorf("metadata lookup for %q: %w", b.Title, err)
	}

	MergeVolumes(&b, infos)
	if err := l.store.Update(ctx, &b); err != nil {
		return fmt.Errorf("update book %d: %w", bookID, err)
	}
	return nil
}
