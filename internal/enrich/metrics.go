package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesPulled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_worker_messages_pulled_total",
		Help: "Messages pulled from the enrichment queue.",
	})
	booksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_worker_books_processed_total",
		Help: "Books successfully enriched and updated.",
	})
	processFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_worker_process_failures_total",
		Help: "Per-book enrichment failures.",
	})
	decodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_worker_decode_failures_total",
		Help: "Queue payloads that could not be decoded. These messages are acknowledged with their batch and lost.",
	})
)
