package store

import "testing"

func TestMarkReadIdempotent(t *testing.T) {
	db := testDB(t)

	if err := db.MarkRead("m1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkRead("m1"); err != nil {
		t.Fatal(err)
	}

	read, err := db.IsRead("m1")
	if err != nil {
		t.Fatal(err)
	}
	if !read {
		t.Error("m1 not read")
	}
	ids, err := db.AllReadIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("got %d read ids, want 1", len(ids))
	}
}

func TestMarkManyReadAtomic(t *testing.T) {
	db := testDB(t)

	// The empty id is rejected mid-batch; the whole batch must roll
	// back, leaving none of the earlier ids marked.
	err := db.MarkManyRead([]string{"a", "b", ""})
	if err == nil {
		t.Fatal("batch with invalid id should fail")
	}

	for _, id := range []string{"a", "b"} {
		read, err := db.IsRead(id)
		if err != nil {
			t.Fatal(err)
		}
		if read {
			t.Errorf("%q marked read despite failed batch", id)
		}
	}

	// A valid batch marks everything.
	if err := db.MarkManyRead([]string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}
	ids, err := db.AllReadIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Errorf("got %d read ids, want 3", len(ids))
	}
}

func TestMarkManyDeletedAtomic(t *testing.T) {
	db := testDB(t)

	err := db.MarkManyDeleted([]DeletionMarker{
		{MsgID: "a", AccountAddress: "0x1"},
		{MsgID: "b", AccountAddress: ""},
	})
	if err == nil {
		t.Fatal("batch with empty account should fail")
	}
	deleted, err := db.IsDeleted("a")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("a tombstoned despite failed batch")
	}

	if err := db.MarkManyDeleted([]DeletionMarker{
		{MsgID: "a", AccountAddress: "0x1"},
		{MsgID: "b", AccountAddress: "0x1"},
	}); err != nil {
		t.Fatal(err)
	}
	ids, err := db.AllDeletedIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d deleted ids, want 2", len(ids))
	}
}

func TestOverlaysAreOrthogonal(t *testing.T) {
	db := testDB(t)

	if err := db.MarkRead("m1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkDeleted("m1", "0xacct"); err != nil {
		t.Fatal(err)
	}

	read, err := db.IsRead("m1")
	if err != nil {
		t.Fatal(err)
	}
	deleted, err := db.IsDeleted("m1")
	if err != nil {
		t.Fatal(err)
	}
	if !read || !deleted {
		t.Errorf("read = %v, deleted = %v, want both true", read, deleted)
	}

	// Restoring does not touch the read overlay.
	if err := db.Restore("m1"); err != nil {
		t.Fatal(err)
	}
	read, err = db.IsRead("m1")
	if err != nil {
		t.Fatal(err)
	}
	if !read {
		t.Error("restore cleared the read marker")
	}
}

func TestRestoreReversesDelete(t *testing.T) {
	db := testDB(t)

	if err := db.MarkDeleted("m1", "0xacct"); err != nil {
		t.Fatal(err)
	}
	if err := db.Restore("m1"); err != nil {
		t.Fatal(err)
	}

	deleted, err := db.IsDeleted("m1")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("m1 still deleted after restore")
	}
}

// Restore is keyed by message id alone while MarkDeleted is keyed by
// (id, account): one account restoring a shared message unarchives it
// for every account. This pins the documented behavior.
func TestRestoreClearsAllAccounts(t *testing.T) {
	db := testDB(t)

	if err := db.MarkDeleted("shared", "0xalice"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkDeleted("shared", "0xbob"); err != nil {
		t.Fatal(err)
	}

	if err := db.Restore("shared"); err != nil {
		t.Fatal(err)
	}
	deleted, err := db.IsDeleted("shared")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("tombstones remain after restore")
	}
}

func TestOverlayClearParity(t *testing.T) {
	db := testDB(t)

	if err := db.MarkRead("m1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkDeleted("m1", "0x1"); err != nil {
		t.Fatal(err)
	}

	if err := db.ClearReadMarkers(); err != nil {
		t.Fatal(err)
	}
	if err := db.ClearDeletionMarkers(); err != nil {
		t.Fatal(err)
	}

	read, _ := db.IsRead("m1")
	deleted, _ := db.IsDeleted("m1")
	if read || deleted {
		t.Errorf("read = %v, deleted = %v after clears, want both false", read, deleted)
	}
}
