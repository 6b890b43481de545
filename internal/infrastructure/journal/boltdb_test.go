package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal(t *testing.T) {
	t.Run("record and count", func(t *testing.T) {
		j := openTestJournal(t)

		for i := 0; i < 3; i++ {
			if err := j.Record(Entry{Recipient: int64(100 + i), Kind: "reminder", Delivered: true}); err != nil {
				t.Fatalf("Record failed: %v", err)
			}
		}

		size, err := j.Size()
		if err != nil {
			t.Fatal(err)
		}
		if size != 3 {
			t.Errorf("Size = %d, want 3", size)
		}
	})

	t.Run("recent returns newest first", func(t *testing.T) {
		j := openTestJournal(t)

		for _, kind := range []string{"reminder", "overdue", "digest"} {
			if err := j.Record(Entry{Recipient: 1, Kind: kind, Delivered: true}); err != nil {
				t.Fatal(err)
			}
		}

		entries, err := j.Recent(2)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("Recent returned %d entries, want 2", len(entries))
		}
		if entries[0].Kind != "digest" || entries[1].Kind != "overdue" {
			t.Errorf("order = [%s %s], want newest first", entries[0].Kind, entries[1].Kind)
		}
		if entries[0].Seq <= entries[1].Seq {
			t.Errorf("sequence not monotonic: %d then %d", entries[0].Seq, entries[1].Seq)
		}
	})

	t.Run("failed attempts keep the error text", func(t *testing.T) {
		j := openTestJournal(t)

		if err := j.Record(Entry{Recipient: 7, Kind: "overdue", Delivered: false, Error: "chat not found"}); err != nil {
			t.Fatal(err)
		}
		entries, err := j.Recent(1)
		if err != nil {
			t.Fatal(err)
		}
		if entries[0].Delivered || entries[0].Error != "chat not found" {
			t.Errorf("entry = %+v, want the failure preserved", entries[0])
		}
	})

	t.Run("zero timestamp is stamped at write", func(t *testing.T) {
		j := openTestJournal(t)

		before := time.Now().Add(-time.Second)
		if err := j.Record(Entry{Recipient: 1, Kind: "reminder"}); err != nil {
			t.Fatal(err)
		}
		entries, err := j.Recent(1)
		if err != nil {
			t.Fatal(err)
		}
		if entries[0].Timestamp.Before(before) {
			t.Errorf("timestamp %v not stamped at write time", entries[0].Timestamp)
		}
	})

	t.Run("closed journal rejects writes", func(t *testing.T) {
		j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
		if err != nil {
			t.Fatal(err)
		}
		j.Close()
		if err := j.Record(Entry{Recipient: 1, Kind: "reminder"}); err == nil {
			t.Error("expected an error after Close")
		}
	})
}
