// Package richtext defines the rich-text document model for decoded
// message bodies and its canonical serialized form.
//
// The serialized string is the compatibility contract: it is what the
// decoded-content cache persists, and documents written by any past
// schema version must keep deserializing. The Go structs here may be
// reshaped between releases; the wire JSON may not. Serialize always
// emits version 1, and Deserialize accepts version 1 forever.
package richtext

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Version is the serialization format version emitted by Serialize.
const Version = 1

// BlockKind tags a top-level document block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
)

// InlineKind tags an inline node inside a block.
type InlineKind string

const (
	InlineText    InlineKind = "text"
	InlineLink    InlineKind = "link"
	InlineMention InlineKind = "mention"
)

// Document is a decoded rich-text message body.
type Document struct {
	Version int     `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// Block is one top-level element: a paragraph or a heading.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Level   int       `json:"level,omitempty"` // headings only, 1-6
	Inlines []Inline  `json:"inlines"`
}

// Inline is a run of content inside a block. Kind selects which fields
// are meaningful: Text for every kind, Href for links, Address for
// mentions.
type Inline struct {
	Kind    InlineKind `json:"kind"`
	Text    string     `json:"text"`
	Bold    bool       `json:"bold,omitempty"`
	Italic  bool       `json:"italic,omitempty"`
	Href    string     `json:"href,omitempty"`
	Address string     `json:"address,omitempty"`
}

// Serialize returns the canonical serialized form of the document. The
// document is validated first; a document that does not round-trip is
// rejected here rather than persisted broken.
func Serialize(d *Document) (string, error) {
	if d == nil {
		return "", fmt.Errorf("richtext: nil document")
	}
	if err := validate(d); err != nil {
		return "", err
	}
	out := *d
	out.Version = Version
	b, err := json.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("richtext: marshal: %w", err)
	}
	return string(b), nil
}

// Deserialize parses a serialized document back into its structured
// form. Unknown versions and unknown node kinds are errors, never
// silently dropped content.
func Deserialize(s string) (*Document, error) {
	var d Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, fmt.Errorf("richtext: unmarshal: %w", err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("richtext: unsupported version %d", d.Version)
	}
	if err := validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PlainText returns the plain-text projection of the document: inline
// text runs concatenated, blocks joined by newlines.
func PlainText(d *Document) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	for i, block := range d.Blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, in := range block.Inlines {
			switch in.Kind {
			case InlineText, InlineLink:
				b.WriteString(in.Text)
			case InlineMention:
				if in.Text != "" {
					b.WriteString(in.Text)
				} else {
					b.WriteString(in.Address)
				}
			}
		}
	}
	return b.String()
}

func validate(d *Document) error {
	for _, block := range d.Blocks {
		switch block.Kind {
		case BlockParagraph:
		case BlockHeading:
			if block.Level < 1 || block.Level > 6 {
				return fmt.Errorf("richtext: heading level %d out of range", block.Level)
			}
		default:
			return fmt.Errorf("richtext: unknown block kind %q", block.Kind)
		}
		for _, in := range block.Inlines {
			switch in.Kind {
			case InlineText, InlineLink, InlineMention:
			default:
				return fmt.Errorf("richtext: unknown inline kind %q", in.Kind)
			}
		}
	}
	return nil
}
