package store

import "testing"

func TestContactUpsertAndGet(t *testing.T) {
	db := testDB(t)

	c := &Contact{Address: "0xalice", Name: "Alice", Description: "dao multisig"}
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	// Update in place.
	c.Name = "Alice Updated"
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetContact("0xalice")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Alice Updated" {
		t.Errorf("got %v, want Alice Updated", got)
	}

	got, err = db.GetContact("0xmissing")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("expected nil for missing contact")
	}
}

func TestFindContactsByName(t *testing.T) {
	db := testDB(t)

	for _, c := range []Contact{
		{Address: "0x1", Name: "Alice"},
		{Address: "0x2", Name: "Alice"},
		{Address: "0x3", Name: "Bob"},
	} {
		if err := db.UpsertContact(&c); err != nil {
			t.Fatal(err)
		}
	}

	found, err := db.FindContactsByName("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Errorf("got %d contacts named Alice, want 2", len(found))
	}
}

func TestDeleteContact(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertContact(&Contact{Address: "0x1", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteContact("0x1"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetContact("0x1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("contact survived delete")
	}

	// Deleting an unknown address is a no-op.
	if err := db.DeleteContact("0xnope"); err != nil {
		t.Fatal(err)
	}
}

func TestTagCRUD(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateTag("DeFi", "#f97316", "coins")
	if err != nil {
		t.Fatal(err)
	}

	tag, err := db.GetTag(id)
	if err != nil {
		t.Fatal(err)
	}
	if tag == nil || tag.Name != "DeFi" {
		t.Fatalf("got %v, want DeFi", tag)
	}

	tag.Color = "#000000"
	if err := db.UpdateTag(tag); err != nil {
		t.Fatal(err)
	}
	tag, err = db.GetTag(id)
	if err != nil {
		t.Fatal(err)
	}
	if tag.Color != "#000000" {
		t.Errorf("color = %q, want #000000", tag.Color)
	}

	if err := db.DeleteTag(id); err != nil {
		t.Fatal(err)
	}
	tag, err = db.GetTag(id)
	if err != nil {
		t.Fatal(err)
	}
	if tag != nil {
		t.Error("tag survived delete")
	}
}

func TestTagsForContactFiltersDanglingIDs(t *testing.T) {
	db := testDB(t)

	keep, err := db.CreateTag("Keep", "", "")
	if err != nil {
		t.Fatal(err)
	}
	gone, err := db.CreateTag("Gone", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.UpsertContact(&Contact{Address: "0x1", Name: "A", TagIDs: []int64{keep, gone}}); err != nil {
		t.Fatal(err)
	}

	// Deleting a tag does not cascade: the contact keeps the dangling id.
	if err := db.DeleteTag(gone); err != nil {
		t.Fatal(err)
	}
	c, err := db.GetContact("0x1")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.TagIDs) != 2 {
		t.Errorf("tag ids = %v, want the dangling id preserved", c.TagIDs)
	}

	// But resolution filters it without erroring.
	tags, err := db.TagsForContact("0x1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Name != "Keep" {
		t.Errorf("resolved tags = %v, want only Keep", tags)
	}
}
