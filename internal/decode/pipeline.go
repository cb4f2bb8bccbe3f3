// Package decode runs the decode-once pipeline over the content cache:
// check the cache, invoke the decrypt collaborator only on a miss, and
// persist whatever comes back — decoded content or a permanent
// corrupted marker — so the key-derived decode work never repeats.
package decode

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkoval/mailvault/internal/bus"
	"github.com/nkoval/mailvault/internal/store"
	"go.uber.org/zap"
)

// ErrCorrupted is returned by a Decoder when the ciphertext can never be
// decoded (wrong key, malformed payload). The pipeline caches it as a
// permanent corrupted marker instead of retrying; deterministic failures
// are a valid, final result.
var ErrCorrupted = errors.New("content corrupted")

// ErrUnknownMessage is returned by Resolve for an id that has no raw
// message in the store.
var ErrUnknownMessage = errors.New("unknown message id")

// Decoder is the external decrypt collaborator. Implementations derive
// keys from the wallet and turn ciphertext into structured content. A
// returned ErrCorrupted is permanent; any other error is transient and
// will not be cached.
type Decoder interface {
	Decode(ctx context.Context, msg *store.Message) (*store.DecodedContent, error)
}

// Pipeline resolves message ids to decoded content through the cache.
type Pipeline struct {
	db      *store.DB
	decoder Decoder
	bus     *bus.Bus
	logger  *zap.Logger
}

// NewPipeline creates a pipeline over the given store and decoder.
func NewPipeline(db *store.DB, decoder Decoder, b *bus.Bus, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		db:      db,
		decoder: decoder,
		bus:     b,
		logger:  logger,
	}
}

// Resolve returns the decoded content for a message id, invoking the
// decoder at most once per id for the lifetime of the cache. A cached
// entry — including a corrupted marker — is returned as-is without
// touching the decoder. Transient decoder errors are returned to the
// caller and leave the cache empty for the id, so a later Resolve
// retries.
func (p *Pipeline) Resolve(ctx context.Context, id string) (*store.DecodedContent, error) {
	cached, err := p.db.GetDecoded(id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	msg, err := p.db.GetMessage(id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}

	result, err := p.decodeOnce(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := p.db.PutDecoded(result); err != nil {
		return nil, err
	}
	// Re-read instead of returning our own result: if a concurrent
	// resolve won the insert race, the stored entry is authoritative.
	stored, err := p.db.GetDecoded(id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		// The cache was cleared between the put and the re-read; serve
		// the result we just computed.
		stored = result
	}

	kind := bus.KindDecodeCached
	if stored.Corrupted {
		kind = bus.KindDecodeCorrupted
		p.logger.Warn("cached corrupted marker", zap.String("message_id", id))
	}
	p.bus.Publish(bus.NewEvent(kind, map[string]string{"message_id": id}))

	return stored, nil
}

func (p *Pipeline) decodeOnce(ctx context.Context, msg *store.Message) (*store.DecodedContent, error) {
	// A message whose body the fetch layer already flagged as
	// unretrievable is corrupted without consulting the decoder.
	if msg.ContentCorrupted {
		return &store.DecodedContent{MsgID: msg.ID, Corrupted: true}, nil
	}

	result, err := p.decoder.Decode(ctx, msg)
	if errors.Is(err, ErrCorrupted) {
		return &store.DecodedContent{MsgID: msg.ID, Corrupted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.ID, err)
	}
	result.MsgID = msg.ID
	return result, nil
}
