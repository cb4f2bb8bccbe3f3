package store

import (
	"testing"

	"github.com/nkoval/mailvault/internal/richtext"
)

func TestDecodedContentWriteOnce(t *testing.T) {
	db := testDB(t)

	first := &DecodedContent{
		MsgID:   "m1",
		Subject: "first",
		Text:    TextData{Kind: TextPlain, Plain: "original"},
	}
	if err := db.PutDecoded(first); err != nil {
		t.Fatal(err)
	}

	// A later put for the same id must not replace the cached entry.
	second := &DecodedContent{
		MsgID:   "m1",
		Subject: "second",
		Text:    TextData{Kind: TextPlain, Plain: "replacement"},
	}
	if err := db.PutDecoded(second); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("cache miss after put")
	}
	if got.Subject != "first" || got.Text.Plain != "original" {
		t.Errorf("cached entry replaced: subject %q, text %q", got.Subject, got.Text.Plain)
	}
}

func TestDecodedContentCorruptedNotReplaced(t *testing.T) {
	db := testDB(t)

	if err := db.PutDecoded(&DecodedContent{MsgID: "m1", Corrupted: true}); err != nil {
		t.Fatal(err)
	}
	// Even a successful decode arriving later must not overwrite the
	// corrupted marker: the first cached result is authoritative.
	if err := db.PutDecoded(&DecodedContent{MsgID: "m1", Text: TextData{Kind: TextPlain, Plain: "late"}}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Corrupted {
		t.Errorf("corrupted marker lost: %+v", got)
	}
}

func TestHasDecoded(t *testing.T) {
	db := testDB(t)

	ok, err := db.HasDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("HasDecoded true before put")
	}

	if err := db.PutDecoded(&DecodedContent{MsgID: "m1", Text: TextData{Kind: TextPlain, Plain: "x"}}); err != nil {
		t.Fatal(err)
	}
	ok, err = db.HasDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("HasDecoded false after put")
	}
}

func TestDecodedContentRichTextRoundTrip(t *testing.T) {
	db := testDB(t)

	doc := &richtext.Document{
		Blocks: []richtext.Block{
			{Kind: richtext.BlockHeading, Level: 1, Inlines: []richtext.Inline{
				{Kind: richtext.InlineText, Text: "Proposal", Bold: true},
			}},
			{Kind: richtext.BlockParagraph, Inlines: []richtext.Inline{
				{Kind: richtext.InlineText, Text: "see "},
				{Kind: richtext.InlineLink, Text: "the vote", Href: "https://vote.example"},
				{Kind: richtext.InlineText, Text: " cc "},
				{Kind: richtext.InlineMention, Address: "0xfeed"},
			}},
		},
	}
	put := &DecodedContent{
		MsgID:   "rich1",
		Subject: "governance",
		Text:    TextData{Kind: TextRich, Rich: doc},
		Attachments: []Attachment{
			{Name: "ballot.pdf", MimeType: "application/pdf", Size: 1024, Ref: "ipfs://abc"},
		},
	}
	if err := db.PutDecoded(put); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetDecoded("rich1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("cache miss")
	}
	if got.Text.Kind != TextRich {
		t.Fatalf("kind = %q, want rich", got.Text.Kind)
	}
	wantText := richtext.PlainText(doc)
	if gotText := richtext.PlainText(got.Text.Rich); gotText != wantText {
		t.Errorf("plain-text projection = %q, want %q", gotText, wantText)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "ballot.pdf" {
		t.Errorf("attachments = %v", got.Attachments)
	}
}

func TestClearDecodedForcesRedecode(t *testing.T) {
	db := testDB(t)

	if err := db.PutDecoded(&DecodedContent{MsgID: "m1", Text: TextData{Kind: TextPlain, Plain: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.ClearDecoded(); err != nil {
		t.Fatal(err)
	}

	ok, err := db.HasDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("entry survived ClearDecoded")
	}
	// After clearing, a new put succeeds: the id is back to the empty
	// state.
	if err := db.PutDecoded(&DecodedContent{MsgID: "m1", Text: TextData{Kind: TextPlain, Plain: "y"}}); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetDecoded("m1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Text.Plain != "y" {
		t.Errorf("got %+v, want fresh entry", got)
	}
}

func TestPutDecodedRejectsUnknownKind(t *testing.T) {
	db := testDB(t)

	err := db.PutDecoded(&DecodedContent{MsgID: "m1", Text: TextData{Kind: "weird"}})
	if err == nil {
		t.Fatal("PutDecoded accepted an unknown text kind")
	}
}
