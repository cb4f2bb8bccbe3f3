// Package ingest pulls raw messages from the blockchain-fetch
// collaborator into the local store. The engine only upserts what it is
// given; fetching, pagination cursors and RPC retries belong to the
// Source implementation.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/nkoval/mailvault/internal/bus"
	"github.com/nkoval/mailvault/internal/store"
	"go.uber.org/zap"
)

const defaultPageSize = 100

// Cursor identifies a position in the descending-time scan. The zero
// value means "from the latest". Ties on CreatedAt are broken by ID so
// that a full page ending inside a run of equal timestamps (messages
// landing in the same block) can resume without skipping the rest of
// the run.
type Cursor struct {
	CreatedAt int64
	ID        string
}

// Source is the blockchain-fetch collaborator. FetchPage returns up to
// limit messages strictly before the cursor in (CreatedAt, ID)
// descending order. An empty page ends the scan.
type Source interface {
	FetchPage(ctx context.Context, before Cursor, limit int) ([]store.Message, error)
}

// Engine ingests fetched messages into the store, one transaction per
// page.
type Engine struct {
	db       *store.DB
	source   Source
	bus      *bus.Bus
	logger   *zap.Logger
	pageSize int
	cancel   context.CancelFunc
}

// NewEngine creates an ingest engine over the given store and source.
func NewEngine(db *store.DB, source Source, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:       db,
		source:   source,
		bus:      b,
		logger:   logger,
		pageSize: defaultPageSize,
	}
}

// SyncAll pages through the source from the latest message backwards
// until exhaustion, upserting each page atomically. Idempotent: a
// re-sync replays the same upserts with no visible effect. Returns the
// number of messages ingested.
func (e *Engine) SyncAll(ctx context.Context) (int, error) {
	total := 0
	var before Cursor
	for {
		page, err := e.source.FetchPage(ctx, before, e.pageSize)
		if err != nil {
			return total, fmt.Errorf("fetch page before %d/%s: %w", before.CreatedAt, before.ID, err)
		}
		if len(page) == 0 {
			break
		}
		if err := e.IngestBatch(page); err != nil {
			return total, err
		}
		total += len(page)
		// Pages are newest-first; the oldest entry is the next cursor.
		last := page[len(page)-1]
		before = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if len(page) < e.pageSize {
			break
		}
	}
	e.logger.Info("sync complete", zap.Int("messages", total))
	return total, nil
}

// IngestBatch upserts one page of messages in a single transaction,
// all-or-nothing, and publishes an ingest.batch event on commit.
func (e *Engine) IngestBatch(msgs []store.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (id, created_at, sender_address, recipient_address, encrypted_key, content, content_corrupted, metadata, inserted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				created_at = excluded.created_at,
				sender_address = excluded.sender_address,
				recipient_address = excluded.recipient_address,
				encrypted_key = excluded.encrypted_key,
				content = excluded.content,
				content_corrupted = excluded.content_corrupted,
				metadata = excluded.metadata`,
			m.ID, m.CreatedAt, m.SenderAddress, m.RecipientAddress, m.EncryptedKey, m.Content, m.ContentCorrupted, m.Metadata, now); err != nil {
			return fmt.Errorf("upsert message %q in batch: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	e.bus.Publish(bus.NewEvent(bus.KindIngestBatch, map[string]int{
		"messages_count": len(msgs),
	}))
	return nil
}

// IngestMessage upserts a single pushed message and publishes a
// store.message_upserted event.
func (e *Engine) IngestMessage(m *store.Message) error {
	if err := e.db.UpsertMessage(m); err != nil {
		return err
	}
	e.bus.Publish(bus.NewEvent(bus.KindMessageUpserted, map[string]string{
		"message_id": m.ID,
	}))
	return nil
}

// Start subscribes to pushed "source." events on the bus and ingests
// them in the background until Stop or context cancellation.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("source.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the background loop.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case "source.message":
		msg, ok := evt.Payload.(*store.Message)
		if !ok {
			return
		}
		if err := e.IngestMessage(msg); err != nil {
			e.logger.Error("failed to ingest message", zap.Error(err), zap.String("message_id", msg.ID))
		}
	case "source.page":
		msgs, ok := evt.Payload.([]store.Message)
		if !ok {
			return
		}
		if err := e.IngestBatch(msgs); err != nil {
			e.logger.Error("failed to ingest page", zap.Error(err), zap.Int("count", len(msgs)))
		}
	}
}
