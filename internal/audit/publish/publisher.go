// Package publish fans decoded audit events out to downstream consumers
// (SIEM, moderation dashboards) with non-blocking semantics. The postgres row
// written by the admin service is the durable record; this pipeline is
// fire-and-forget with drop counting when the sink falls behind.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
)

// Sink delivers one encoded event downstream. The Kafka producer implements
// this in production; tests use an in-memory sink.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// envelope is the JSON shape published for each event. Semantic payload
// fields stay encoded in data so consumers share the same decode contract as
// this repository.
type envelope struct {
	EntryID      int64  `json:"entry_id,omitempty"`
	LogDate      string `json:"log_date"`
	AdminUser    string `json:"admin_user"`
	AffectedUser string `json:"affected_user"`
	Action       string `json:"action"`
	Data         string `json:"data"`
	Comment      string `json:"comment,omitempty"`
	RemoteIP     string `json:"ip_addr,omitempty"`
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithCapacity sets the pending buffer capacity.
func WithCapacity(n int) Option {
	return func(p *Publisher) { p.buf = newRingBuffer(n) }
}

// WithFlushInterval sets how often the drain loop wakes up.
func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) { p.flushInterval = d }
}

// Publisher buffers events and drains them to the sink in batches.
type Publisher struct {
	sink          Sink
	buf           *ringBuffer
	logger        *slog.Logger
	flushInterval time.Duration
	batchSize     int
}

func New(sink Sink, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		sink:          sink,
		buf:           newRingBuffer(4096),
		logger:        logger,
		flushInterval: time.Second,
		batchSize:     256,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit queues an event for delivery. Never blocks and never fails; when the
// buffer is full the oldest pending event is dropped and counted.
func (p *Publisher) Emit(entryID int64, e *audit.Event) {
	rec := e.Record()
	value, err := json.Marshal(envelope{
		EntryID:      entryID,
		LogDate:      rec.LogDate,
		AdminUser:    rec.AdminUser,
		AffectedUser: rec.AffectedUser,
		Action:       rec.Action,
		Data:         rec.Data,
		Comment:      rec.Comment,
		RemoteIP:     rec.RemoteIP,
	})
	if err != nil {
		// envelope marshaling cannot fail for string fields; keep the guard anyway
		if p.logger != nil {
			p.logger.Error("marshal audit envelope failed", "action", rec.Action, "error", err)
		}
		return
	}
	p.buf.enqueue(message{key: rec.AffectedUser, value: value})
}

// Run drains the buffer until ctx is cancelled, then flushes what remains.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.flush(context.Background())
			return ctx.Err()
		case <-ticker.C:
			p.flush(ctx)
		}
	}
}

// Dropped returns the number of events discarded due to backpressure.
func (p *Publisher) Dropped() int64 {
	return p.buf.droppedCount()
}

// Pending returns the number of events waiting for delivery.
func (p *Publisher) Pending() int {
	return p.buf.len()
}

func (p *Publisher) flush(ctx context.Context) {
	for {
		batch := p.buf.dequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, msg := range batch {
			if err := p.sink.Publish(ctx, msg.key, msg.value); err != nil {
				if p.logger != nil {
					p.logger.WarnContext(ctx, "audit event delivery failed", "error", err)
				}
				// Re-queue is pointless if the sink is down; the durable copy
				// lives in postgres. Count it as dropped and move on.
				p.buf.countDrop()
			}
		}
		if len(batch) < p.batchSize {
			return
		}
	}
}
