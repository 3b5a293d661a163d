// Package autosave runs the optimistic, debounced save cycle of one section:
// apply the edit locally, persist it, accept only the newest response and
// drive the idle/saving/saved indicator.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"resumesync/internal/clock"
)

// DefaultQuiet is how long a section stays "saved" before settling to idle.
const DefaultQuiet = 2 * time.Second

// SaveFunc persists value and returns the server's canonical copy of it.
type SaveFunc[S any] func(ctx context.Context, value S) (S, error)

// Result is delivered once for every Update, UpdateWith or Flush call.
type Result[S any] struct {
	// Value is the reconciled section when Applied is true.
	Value   S
	Applied bool
	// Stale means a newer request superseded this one; nothing was applied.
	Stale bool
	// Skipped means no request was issued (a no-op edit or nothing to save).
	Skipped bool
	Err     error
}

// Recorder receives save lifecycle events, typically for metrics.
type Recorder interface {
	SaveStarted(section string)
	SaveFinished(section string, elapsed time.Duration, err error)
	SaveDiscarded(section string)
}

// Options tunes an Orchestrator. Zero values select the defaults.
type Options struct {
	// Name labels logs and metrics, usually the section key.
	Name string
	// Debounce coalesces updates arriving within the window into one request.
	// Zero sends one request per update.
	Debounce time.Duration
	Quiet    time.Duration
	Clock    clock.Clock
	Logger   *slog.Logger
	Recorder Recorder

	OnChange func()
	OnStatus func(Status)
	OnError  func(error)
}

// Orchestrator owns one section store and its save cycle.
type Orchestrator[S Section[S, P], P any] struct {
	ctx  context.Context
	save SaveFunc[S]
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	store  *Store[S, P]
	guard  RaceGuard
	status Status

	pending      []chan Result[S]
	pendingToken uint64
	debounce     *clock.Timer
	debounceGen  uint64

	quiet    *clock.Timer
	quietGen uint64
	stopped  bool
}

// New builds an orchestrator. Requests run with ctx; cancelling it fails the
// ones in flight.
func New[S Section[S, P], P any](ctx context.Context, empty func() S, save SaveFunc[S], opts Options) *Orchestrator[S, P] {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator[S, P]{
		ctx:    ctx,
		save:   save,
		opts:   opts,
		log:    logger.With(slog.String("section", opts.Name)),
		store:  NewStore[S, P](empty),
		status: Idle,
	}
}

// Current returns the section value and whether it exists.
func (o *Orchestrator[S, P]) Current() (S, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Current()
}

// Status returns the save indicator.
func (o *Orchestrator[S, P]) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Update applies patch locally and schedules its persistence. The returned
// value already reflects the edit.
func (o *Orchestrator[S, P]) Update(patch P) (S, <-chan Result[S]) {
	o.mu.Lock()
	value := o.store.ApplyOptimistic(patch)
	ch, start := o.submitLocked()
	o.mu.Unlock()

	o.changed()
	if start != nil {
		o.statusChanged(Saving)
		start()
	}
	return value, ch
}

// UpdateWith derives the patch from the current value (or the empty default)
// under the orchestrator lock. When fn reports false nothing is changed and
// the result resolves as Skipped.
func (o *Orchestrator[S, P]) UpdateWith(fn func(current S) (P, bool)) (S, <-chan Result[S]) {
	o.mu.Lock()
	current := o.store.base()
	patch, ok := fn(current)
	if !ok {
		o.mu.Unlock()
		return current, resolved(Result[S]{Value: current, Skipped: true})
	}
	value := o.store.ApplyOptimistic(patch)
	ch, start := o.submitLocked()
	o.mu.Unlock()

	o.changed()
	if start != nil {
		o.statusChanged(Saving)
		start()
	}
	return value, ch
}

// Flush sends the current value now: a pending debounced request fires
// immediately, otherwise the value is saved again. It is the retry path
// after a failed save.
func (o *Orchestrator[S, P]) Flush() <-chan Result[S] {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return resolved(Result[S]{Stale: true})
	}

	ch := make(chan Result[S], 1)
	if len(o.pending) > 0 {
		o.pending = append(o.pending, ch)
		o.debounce.Stop()
		o.debounceGen++
		o.dispatchLocked()
		o.mu.Unlock()
		return ch
	}

	value, ok := o.store.Current()
	if !ok {
		o.mu.Unlock()
		return resolved(Result[S]{Skipped: true})
	}
	token := o.guard.Begin()
	o.enterSavingLocked()
	o.mu.Unlock()

	o.statusChanged(Saving)
	go o.send(token, value, []chan Result[S]{ch})
	return ch
}

// Hydrate replaces the section with a loaded value. Requests still in flight
// become stale and the status returns to idle.
func (o *Orchestrator[S, P]) Hydrate(value *S) {
	o.mu.Lock()
	o.store.Hydrate(value)
	o.guard.Begin()
	dropped := o.dropPendingLocked()
	o.quiet.Stop()
	o.quietGen++
	o.status = Idle
	o.mu.Unlock()

	deliver(dropped, Result[S]{Stale: true})
	o.changed()
	o.statusChanged(Idle)
}

// Stop cancels pending timers. Queued and in-flight requests resolve stale.
func (o *Orchestrator[S, P]) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.guard.Begin()
	dropped := o.dropPendingLocked()
	o.quiet.Stop()
	o.quietGen++
	o.mu.Unlock()

	deliver(dropped, Result[S]{Stale: true})
}

// submitLocked issues (or debounces) a request for the current value. The
// returned start launches an immediate send and must be called after the
// lock is released and Saving has been reported. It is nil once the
// orchestrator is stopped.
func (o *Orchestrator[S, P]) submitLocked() (<-chan Result[S], func()) {
	if o.stopped {
		return resolved(Result[S]{Stale: true}), nil
	}

	ch := make(chan Result[S], 1)

	token := o.guard.Begin()
	o.enterSavingLocked()

	if o.opts.Debounce > 0 {
		o.pending = append(o.pending, ch)
		o.pendingToken = token
		o.debounce.Stop()
		o.debounceGen++
		gen := o.debounceGen
		o.debounce = o.opts.Clock.AfterFunc(o.opts.Debounce, func() { o.fire(gen) })
		return ch, func() {}
	}

	value, _ := o.store.Current()
	return ch, func() { go o.send(token, value, []chan Result[S]{ch}) }
}

func (o *Orchestrator[S, P]) fire(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.debounceGen || len(o.pending) == 0 {
		return
	}
	o.dispatchLocked()
}

// dispatchLocked sends the latest value for every queued caller.
func (o *Orchestrator[S, P]) dispatchLocked() {
	waiters := o.pending
	token := o.pendingToken
	o.pending = nil
	o.debounce = nil

	value, _ := o.store.Current()
	go o.send(token, value, waiters)
}

func (o *Orchestrator[S, P]) send(token uint64, value S, waiters []chan Result[S]) {
	start := o.opts.Clock.Now()
	o.opts.Recorder.SaveStarted(o.opts.Name)

	server, err := o.save(o.ctx, value)
	elapsed := o.opts.Clock.Now().Sub(start)

	o.mu.Lock()
	if !o.guard.IsCurrent(token) {
		o.mu.Unlock()
		o.opts.Recorder.SaveDiscarded(o.opts.Name)
		o.log.Debug("discarded stale save response", slog.Uint64("token", token))
		deliver(waiters, Result[S]{Stale: true})
		return
	}

	if err != nil {
		o.status = Idle
		o.mu.Unlock()

		o.opts.Recorder.SaveFinished(o.opts.Name, elapsed, err)
		o.log.Warn("save section failed", slog.Any("error", err))
		if o.opts.OnError != nil {
			o.opts.OnError(err)
		}
		o.statusChanged(Idle)
		deliver(waiters, Result[S]{Err: err})
		return
	}

	merged := o.store.ApplyAuthoritative(server)
	o.status = Saved
	o.startQuietLocked()
	o.mu.Unlock()

	o.opts.Recorder.SaveFinished(o.opts.Name, elapsed, nil)
	o.changed()
	o.statusChanged(Saved)
	deliver(waiters, Result[S]{Value: merged, Applied: true})
}

func (o *Orchestrator[S, P]) enterSavingLocked() {
	o.status = Saving
	o.quiet.Stop()
	o.quietGen++
}

func (o *Orchestrator[S, P]) startQuietLocked() {
	o.quiet.Stop()
	o.quietGen++
	gen := o.quietGen
	o.quiet = o.opts.Clock.AfterFunc(o.opts.Quiet, func() { o.settle(gen) })
}

func (o *Orchestrator[S, P]) settle(gen uint64) {
	o.mu.Lock()
	if gen != o.quietGen || o.status != Saved {
		o.mu.Unlock()
		return
	}
	o.status = Idle
	o.mu.Unlock()

	o.statusChanged(Idle)
}

func (o *Orchestrator[S, P]) dropPendingLocked() []chan Result[S] {
	dropped := o.pending
	o.pending = nil
	o.debounce.Stop()
	o.debounce = nil
	o.debounceGen++
	return dropped
}

func (o *Orchestrator[S, P]) changed() {
	if o.opts.OnChange != nil {
		o.opts.OnChange()
	}
}

func (o *Orchestrator[S, P]) statusChanged(s Status) {
	if o.opts.OnStatus != nil {
		o.opts.OnStatus(s)
	}
}

func deliver[S any](waiters []chan Result[S], r Result[S]) {
	for _, ch := range waiters {
		ch <- r
		close(ch)
	}
}

func resolved[S any](r Result[S]) <-chan Result[S] {
	ch := make(chan Result[S], 1)
	ch <- r
	close(ch)
	return ch
}

type nopRecorder struct{}

func (nopRecorder) SaveStarted(string)                        {}
func (nopRecorder) SaveFinished(string, time.Duration, error) {}
func (nopRecorder) SaveDiscarded(string)                      {}
