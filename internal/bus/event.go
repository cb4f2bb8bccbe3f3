package bus

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds published by the cache subsystem. Mutation events are
// published only after a successful commit, never for rolled-back
// batches.
const (
	KindMessageUpserted = "store.message_upserted"
	KindDecodeCached    = "decode.cached"
	KindDecodeCorrupted = "decode.corrupted"
	KindIngestBatch     = "ingest.batch"
)

// Event is one change notification.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent builds an event with a fresh envelope id and timestamp.
func NewEvent(kind string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
