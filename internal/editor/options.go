package editor

import (
	"log/slog"
	"time"

	"resumesync/internal/autosave"
	"resumesync/internal/clock"
	"resumesync/internal/resume"
	"resumesync/internal/snapshot"
)

// DefaultHeaderDebounce coalesces keystrokes in the document header fields.
const DefaultHeaderDebounce = 500 * time.Millisecond

type options struct {
	clock           clock.Clock
	logger          *slog.Logger
	recorder        autosave.Recorder
	snapshots       *snapshot.Writer
	headerDebounce  time.Duration
	sectionDebounce time.Duration
	quiet           time.Duration
	onStatus        func(resume.SectionKey, autosave.Status)
	onError         func(resume.SectionKey, error)
}

// Option configures a Session.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecorder routes save lifecycle events, e.g. to metrics.Autosave.
func WithRecorder(r autosave.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithSnapshots enables the local recovery snapshot.
func WithSnapshots(w *snapshot.Writer) Option {
	return func(o *options) { o.snapshots = w }
}

// WithDebounce sets the header and section debounce windows.
func WithDebounce(header, section time.Duration) Option {
	return func(o *options) {
		o.headerDebounce = header
		o.sectionDebounce = section
	}
}

// WithQuiet sets how long a section shows "saved" before going idle.
func WithQuiet(d time.Duration) Option {
	return func(o *options) { o.quiet = d }
}

// OnStatus registers a callback for every save status transition.
func OnStatus(fn func(resume.SectionKey, autosave.Status)) Option {
	return func(o *options) { o.onStatus = fn }
}

// OnError registers a callback for failed saves. The edit itself stays applied.
func OnError(fn func(resume.SectionKey, error)) Option {
	return func(o *options) { o.onError = fn }
}
