package store

import "github.com/nkoval/mailvault/internal/richtext"

// Message is a raw protocol-level record retrieved from the chain.
// Rows are immutable once stored: the ciphertext for a given ID never
// changes, and archiving is an overlay, never a row removal.
type Message struct {
	ID               string
	CreatedAt        int64 // unix milliseconds, secondary index
	SenderAddress    string
	RecipientAddress string
	EncryptedKey     []byte
	Content          []byte
	ContentCorrupted bool   // the fetch layer could not retrieve the body
	Metadata         []byte // chain-specific blob, opaque to the store
	InsertedAt       int64
}

// TextKind tags the representation of a decoded message body.
type TextKind string

const (
	TextPlain TextKind = "plain"
	TextRich  TextKind = "rich"
)

// TextData is a decoded message body: a plain string or a rich-text
// document. Kind selects which field is valid; consumers switch on it
// exhaustively.
type TextData struct {
	Kind  TextKind
	Plain string
	Rich  *richtext.Document
}

// Attachment describes one decoded attachment. Stored as JSON inside
// the decoded_content row.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Ref      string `json:"ref"`
}

// DecodedContent is the cached result of decoding a message's ciphertext.
// Corrupted records a permanent decode failure; the remaining fields are
// meaningless when it is set. Subject is empty when the message has none.
type DecodedContent struct {
	MsgID       string
	Corrupted   bool
	Subject     string
	Text        TextData
	Attachments []Attachment
	DecodedAt   int64
}

// DeletionMarker is a per-account tombstone: its presence means the
// message is archived for that account.
type DeletionMarker struct {
	MsgID          string
	AccountAddress string
	DeletedAt      int64
}

// Contact is an address-book entry. TagIDs is a denormalized list of tag
// ids with no referential integrity; ids pointing at deleted tags are
// tolerated and filtered on read.
type Contact struct {
	Address     string
	Name        string
	Description string
	TagIDs      []int64
	UpdatedAt   int64
}

// Tag is a user-defined label applied to contacts.
type Tag struct {
	ID    int64
	Name  string
	Color string
	Icon  string
}
