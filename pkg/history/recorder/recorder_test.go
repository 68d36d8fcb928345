package recorder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/storage"
)

func TestRecorder_CloseDrains(t *testing.T) {
	store := storage.NewMemoryStorage(0)
	r := New(store, &Config{AsyncBuffer: 64, WriteTimeout: time.Second})

	for i := 0; i < 50; i++ {
		rec := history.NewRecord(history.OriginCLI, fmt.Sprintf("f%d.md", i), []byte("x"), nil, nil, 0)
		if err := r.Record(context.Background(), rec); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}
	r.Close()

	if got := store.Size(); got != 50 {
		t.Errorf("stored %d records, want 50", got)
	}
}

func TestRecorder_RejectsAfterClose(t *testing.T) {
	r := New(storage.NewMemoryStorage(0), nil)
	r.Close()
	r.Close()

	err := r.Record(context.Background(), &history.Record{ID: "late"})
	var rerr *history.RecorderError
	if !errors.As(err, &rerr) || rerr.RecordID != "late" {
		t.Fatalf("Record after Close = %v, want RecorderError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled cause, got %v", err)
	}
}

// blockingStore holds every write until release is closed.
type blockingStore struct {
	*storage.MemoryStorage
	release chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		MemoryStorage: storage.NewMemoryStorage(0),
		release:       make(chan struct{}),
	}
}

func (b *blockingStore) Store(ctx context.Context, r *history.Record) error {
	<-b.release
	return b.MemoryStorage.Store(ctx, r)
}

func TestRecorder_FullBufferTimesOut(t *testing.T) {
	bs := newBlockingStore()
	r := New(bs, &Config{AsyncBuffer: 1, WriteTimeout: 20 * time.Millisecond})

	ctx := context.Background()
	// first record is taken by the worker, second fills the buffer
	_ = r.Record(ctx, &history.Record{ID: "1"})
	time.Sleep(10 * time.Millisecond)
	_ = r.Record(ctx, &history.Record{ID: "2"})

	err := r.Record(ctx, &history.Record{ID: "3"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	close(bs.release)
	r.Close()

	if got := bs.Size(); got != 2 {
		t.Errorf("stored %d, want 2", got)
	}
}
