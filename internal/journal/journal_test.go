package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohfixit/helperd/internal/testutil/testlog"
)

func TestAppendAndRecent(t *testing.T) {
	testlog.Start(t)
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer func() { _ = j.Close() }()

	ctx := context.Background()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{RollbackID: "rb-1", ActionID: "flush-dns-macos", Kind: "execute", Success: true, OutputHash: "aGk=", Timestamp: base},
		{RollbackID: "rb-1", ActionID: "flush-dns-macos", Kind: "rollback", Success: false, OutputHash: "bm8=", Timestamp: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].Kind != "rollback" || got[1].Kind != "execute" {
		t.Fatalf("entries not ordered newest first: %+v", got)
	}
	if got[0].Success || !got[1].Success {
		t.Fatalf("success flags lost: %+v", got)
	}
	if !got[1].Timestamp.Equal(base) {
		t.Fatalf("timestamp not round-tripped: got %v want %v", got[1].Timestamp, base)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	testlog.Start(t)
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer func() { _ = j.Close() }()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := Entry{
			RollbackID: "rb",
			ActionID:   "restart-finder",
			Kind:       "execute",
			Success:    true,
			OutputHash: "eA==",
			Timestamp:  time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("limit not honored: got %d entries", len(got))
	}
}

// A nil journal is a valid no-op: persistence is optional.
func TestNilJournalIsNoop(t *testing.T) {
	testlog.Start(t)
	var j *Journal

	if err := j.Append(context.Background(), Entry{ActionID: "x"}); err != nil {
		t.Fatalf("nil append: %v", err)
	}
	entries, err := j.Recent(context.Background(), 5)
	if err != nil || entries != nil {
		t.Fatalf("nil recent: entries=%v err=%v", entries, err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
