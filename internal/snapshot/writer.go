package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"resumesync/internal/clock"
	"resumesync/internal/resume"
)

// DefaultDelay is the debounce window between a change and its snapshot.
const DefaultDelay = 500 * time.Millisecond

// Snapshot is the stored form of an open document.
type Snapshot struct {
	DocumentID int             `json:"document_id"`
	SavedAt    time.Time       `json:"saved_at"`
	Document   resume.Document `json:"document"`
}

// Writer debounces snapshot writes. Every Schedule call replaces the pending
// source; only the latest document is written. Last write wins.
type Writer struct {
	store Store
	key   string
	delay time.Duration
	clock clock.Clock
	log   *slog.Logger

	mu     sync.Mutex
	timer  *clock.Timer
	gen    uint64
	source func() resume.Document
}

// NewWriter builds a writer for key. Zero delay and nil clock/logger select
// the defaults.
func NewWriter(store Store, key string, delay time.Duration, clk clock.Clock, logger *slog.Logger) *Writer {
	if key == "" {
		key = DefaultKey
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, key: key, delay: delay, clock: clk, log: logger}
}

// Schedule arranges for source() to be written once the writer has been
// quiet for the debounce window.
func (w *Writer) Schedule(source func() resume.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.source = source
	w.timer.Stop()
	w.gen++
	gen := w.gen
	w.timer = w.clock.AfterFunc(w.delay, func() { w.fire(gen) })
}

// Flush writes a pending snapshot immediately.
func (w *Writer) Flush(ctx context.Context) error {
	source := w.take()
	if source == nil {
		return nil
	}
	return w.put(ctx, source())
}

// Write stores doc now and drops any pending scheduled write.
func (w *Writer) Write(ctx context.Context, doc resume.Document) error {
	w.take()
	return w.put(ctx, doc)
}

// Read returns the stored snapshot or ErrNotFound.
func (w *Writer) Read(ctx context.Context) (Snapshot, error) {
	data, err := w.store.Load(ctx, w.key)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Clear removes the stored snapshot and any pending write.
func (w *Writer) Clear(ctx context.Context) error {
	w.take()
	return w.store.Delete(ctx, w.key)
}

// Stop drops the pending write without storing it.
func (w *Writer) Stop() {
	w.take()
}

func (w *Writer) fire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen || w.source == nil {
		w.mu.Unlock()
		return
	}
	source := w.source
	w.source = nil
	w.timer = nil
	w.mu.Unlock()

	if err := w.put(context.Background(), source()); err != nil {
		w.log.Warn("write local snapshot failed", slog.Any("error", err))
	}
}

func (w *Writer) take() func() resume.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	source := w.source
	w.source = nil
	w.timer.Stop()
	w.timer = nil
	w.gen++
	return source
}

func (w *Writer) put(ctx context.Context, doc resume.Document) error {
	data, err := json.Marshal(Snapshot{
		DocumentID: doc.ID,
		SavedAt:    w.clock.Now().UTC(),
		Document:   doc,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := w.store.Save(ctx, w.key, data); err != nil {
		return err
	}
	w.log.Debug("local snapshot written", slog.Int("document_id", doc.ID))
	return nil
}
