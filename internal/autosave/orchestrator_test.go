package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumesync/internal/clock"
	"resumesync/internal/resume"
)

type saveCall[S any] struct {
	value S
	reply chan saveReply[S]
}

type saveReply[S any] struct {
	value S
	err   error
}

// fakeBackend parks every save until the test answers it.
type fakeBackend[S any] struct {
	calls chan saveCall[S]
}

func newFakeBackend[S any]() *fakeBackend[S] {
	return &fakeBackend[S]{calls: make(chan saveCall[S], 16)}
}

func (b *fakeBackend[S]) save(ctx context.Context, value S) (S, error) {
	call := saveCall[S]{value: value, reply: make(chan saveReply[S], 1)}
	b.calls <- call
	select {
	case r := <-call.reply:
		return r.value, r.err
	case <-ctx.Done():
		var zero S
		return zero, ctx.Err()
	}
}

func (c saveCall[S]) succeed(value S) { c.reply <- saveReply[S]{value: value} }
func (c saveCall[S]) fail(err error)  { c.reply <- saveReply[S]{err: err} }

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on channel")
	}
	var zero T
	return zero
}

type countingRecorder struct {
	mu        sync.Mutex
	started   int
	failed    int
	discarded int
}

func (r *countingRecorder) SaveStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *countingRecorder) SaveFinished(_ string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
	}
}

func (r *countingRecorder) SaveDiscarded(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discarded++
}

func newProfileOrchestrator(t *testing.T, backend *fakeBackend[resume.ProfileSection], opts Options) *Orchestrator[resume.ProfileSection, resume.ProfilePatch] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if opts.Clock == nil {
		opts.Clock = clock.Fake(time.Unix(0, 0))
	}
	opts.Name = string(resume.SectionProfile)
	empty := func() resume.ProfileSection { return resume.EmptyProfile(1) }
	return New[resume.ProfileSection, resume.ProfilePatch](ctx, empty, backend.save, opts)
}

func profile(id int, content string) resume.ProfileSection {
	return resume.ProfileSection{
		SectionMeta: resume.SectionMeta{ID: id, DocumentID: 1, Title: resume.DefaultProfileTitle},
		Content:     content,
	}
}

func TestUpdateIsOptimistic(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	o := newProfileOrchestrator(t, backend, Options{})

	_, ok := o.Current()
	require.False(t, ok)

	value, _ := o.Update(resume.ProfilePatch{Content: resume.String("<p>hi</p>")})

	assert.Equal(t, "<p>hi</p>", value.Content)
	current, ok := o.Current()
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", current.Content)
	assert.Equal(t, resume.DefaultProfileTitle, current.Title)
	assert.Equal(t, Saving, o.Status())

	receive(t, backend.calls).succeed(profile(3, "<p>hi</p>"))
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	rec := &countingRecorder{}
	o := newProfileOrchestrator(t, backend, Options{Recorder: rec})

	_, first := o.Update(resume.ProfilePatch{Content: resume.String("v1")})
	_, second := o.Update(resume.ProfilePatch{Content: resume.String("v2")})

	calls := map[string]saveCall[resume.ProfileSection]{}
	for i := 0; i < 2; i++ {
		call := receive(t, backend.calls)
		calls[call.value.Content] = call
	}
	require.Contains(t, calls, "v1")
	require.Contains(t, calls, "v2")

	calls["v1"].succeed(profile(7, "S1"))
	res := receive(t, first)
	assert.True(t, res.Stale)
	assert.False(t, res.Applied)

	current, _ := o.Current()
	assert.Equal(t, "v2", current.Content)
	assert.Zero(t, current.ID)
	assert.Equal(t, Saving, o.Status())

	calls["v2"].succeed(profile(7, "S2"))
	res = receive(t, second)
	require.True(t, res.Applied)
	assert.Equal(t, "S2", res.Value.Content)

	current, _ = o.Current()
	assert.Equal(t, "S2", current.Content)
	assert.Equal(t, 7, current.ID)
	assert.Equal(t, Saved, o.Status())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 2, rec.started)
	assert.Equal(t, 1, rec.discarded)
}

func TestStatusCycle(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	clk := clock.Fake(time.Unix(0, 0))
	var (
		mu      sync.Mutex
		history []Status
	)
	o := newProfileOrchestrator(t, backend, Options{
		Clock: clk,
		OnStatus: func(s Status) {
			mu.Lock()
			defer mu.Unlock()
			history = append(history, s)
		},
	})
	assert.Equal(t, Idle, o.Status())

	_, done := o.Update(resume.ProfilePatch{Content: resume.String("x")})
	assert.Equal(t, Saving, o.Status())

	receive(t, backend.calls).succeed(profile(1, "x"))
	receive(t, done)
	assert.Equal(t, Saved, o.Status())

	clk.Advance(DefaultQuiet - time.Millisecond)
	assert.Equal(t, Saved, o.Status())

	clk.Advance(time.Millisecond)
	assert.Equal(t, Idle, o.Status())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{Saving, Saved, Idle}, history)
}

func TestNewSaveCancelsQuietTimer(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	clk := clock.Fake(time.Unix(0, 0))
	o := newProfileOrchestrator(t, backend, Options{Clock: clk})

	_, done := o.Update(resume.ProfilePatch{Content: resume.String("a")})
	receive(t, backend.calls).succeed(profile(1, "a"))
	receive(t, done)
	require.Equal(t, Saved, o.Status())

	clk.Advance(time.Second)
	_, done = o.Update(resume.ProfilePatch{Content: resume.String("b")})
	clk.Advance(DefaultQuiet)
	assert.Equal(t, Saving, o.Status())

	receive(t, backend.calls).succeed(profile(1, "b"))
	receive(t, done)
	assert.Equal(t, Saved, o.Status())
}

func TestFailureKeepsOptimisticValue(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	boom := errors.New("boom")
	var reported error
	o := newProfileOrchestrator(t, backend, Options{OnError: func(err error) { reported = err }})

	_, done := o.Update(resume.ProfilePatch{Content: resume.String("draft")})
	receive(t, backend.calls).fail(boom)

	res := receive(t, done)
	assert.ErrorIs(t, res.Err, boom)
	assert.ErrorIs(t, reported, boom)
	assert.Equal(t, Idle, o.Status())

	current, _ := o.Current()
	assert.Equal(t, "draft", current.Content)

	retry := o.Flush()
	call := receive(t, backend.calls)
	assert.Equal(t, "draft", call.value.Content)
	call.succeed(profile(2, "draft"))

	res = receive(t, retry)
	assert.True(t, res.Applied)
	assert.Equal(t, Saved, o.Status())
}

func TestDebounceCoalescesUpdates(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	clk := clock.Fake(time.Unix(0, 0))
	o := newProfileOrchestrator(t, backend, Options{Clock: clk, Debounce: 500 * time.Millisecond})

	_, first := o.Update(resume.ProfilePatch{Content: resume.String("J")})
	clk.Advance(300 * time.Millisecond)
	_, second := o.Update(resume.ProfilePatch{Content: resume.String("Jo")})
	clk.Advance(300 * time.Millisecond)
	assert.Len(t, backend.calls, 0)
	assert.Equal(t, Saving, o.Status())

	clk.Advance(200 * time.Millisecond)
	call := receive(t, backend.calls)
	assert.Equal(t, "Jo", call.value.Content)
	call.succeed(profile(4, "Jo"))

	r1 := receive(t, first)
	r2 := receive(t, second)
	assert.True(t, r1.Applied)
	assert.True(t, r2.Applied)
	assert.Equal(t, r1.Value, r2.Value)
	assert.Len(t, backend.calls, 0)
}

func TestFlushFiresPendingDebounce(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	clk := clock.Fake(time.Unix(0, 0))
	o := newProfileOrchestrator(t, backend, Options{Clock: clk, Debounce: 500 * time.Millisecond})

	_, pending := o.Update(resume.ProfilePatch{Content: resume.String("now")})
	flushed := o.Flush()

	receive(t, backend.calls).succeed(profile(4, "now"))
	assert.True(t, receive(t, pending).Applied)
	assert.True(t, receive(t, flushed).Applied)

	clk.Advance(time.Second)
	assert.Len(t, backend.calls, 0)
}

func TestFlushWithoutValueIsSkipped(t *testing.T) {
	o := newProfileOrchestrator(t, newFakeBackend[resume.ProfileSection](), Options{})

	res := receive(t, o.Flush())

	assert.True(t, res.Skipped)
	assert.Equal(t, Idle, o.Status())
}

func TestHydrateMakesInFlightStale(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	o := newProfileOrchestrator(t, backend, Options{})

	_, done := o.Update(resume.ProfilePatch{Content: resume.String("typed")})
	call := receive(t, backend.calls)

	loaded := profile(9, "loaded")
	o.Hydrate(&loaded)
	assert.Equal(t, Idle, o.Status())

	call.succeed(profile(9, "late"))
	assert.True(t, receive(t, done).Stale)

	current, _ := o.Current()
	assert.Equal(t, "loaded", current.Content)
	assert.Equal(t, Idle, o.Status())
}

func TestUpdateWithSkipsNoop(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	o := newProfileOrchestrator(t, backend, Options{})

	value, done := o.UpdateWith(func(current resume.ProfileSection) (resume.ProfilePatch, bool) {
		assert.Equal(t, resume.DefaultProfileTitle, current.Title)
		return resume.ProfilePatch{}, false
	})

	assert.True(t, receive(t, done).Skipped)
	assert.Equal(t, resume.DefaultProfileTitle, value.Title)
	assert.Equal(t, Idle, o.Status())
	assert.Len(t, backend.calls, 0)
}

func TestStopResolvesPendingAsStale(t *testing.T) {
	backend := newFakeBackend[resume.ProfileSection]()
	clk := clock.Fake(time.Unix(0, 0))
	o := newProfileOrchestrator(t, backend, Options{Clock: clk, Debounce: time.Second})

	_, pending := o.Update(resume.ProfilePatch{Content: resume.String("bye")})
	o.Stop()

	assert.True(t, receive(t, pending).Stale)
	clk.Advance(time.Second)
	assert.Len(t, backend.calls, 0)

	_, after := o.Update(resume.ProfilePatch{Content: resume.String("again")})
	assert.True(t, receive(t, after).Stale)
}

func TestServerOmittingBulletsKeepsClientBullets(t *testing.T) {
	backend := newFakeBackend[resume.ExperienceSection]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	empty := func() resume.ExperienceSection { return resume.EmptyExperience(1) }
	o := New[resume.ExperienceSection, resume.ExperiencePatch](ctx, empty, backend.save, Options{Clock: clock.Fake(time.Unix(0, 0))})

	submitted := []resume.Job{{
		Position: resume.Position{ID: 1},
		Company:  "Acme",
		Bullets: []resume.Bullet{
			{Position: resume.Position{ID: 1}, Text: "built"},
			{Position: resume.Position{ID: 2}, Text: "led"},
		},
	}}
	_, done := o.Update(resume.ExperiencePatch{Jobs: submitted})

	call := receive(t, backend.calls)
	call.succeed(resume.ExperienceSection{
		SectionMeta: resume.SectionMeta{ID: 5, DocumentID: 1},
		Jobs:        []resume.Job{{Position: resume.Position{ID: 1}, Company: "Acme"}},
	})

	res := receive(t, done)
	require.True(t, res.Applied)
	require.Len(t, res.Value.Jobs, 1)
	assert.Equal(t, []string{"built", "led"}, []string{res.Value.Jobs[0].Bullets[0].Text, res.Value.Jobs[0].Bullets[1].Text})
	assert.Equal(t, 5, res.Value.Jobs[0].SectionID)
}

func TestSectionsDoNotShareGuards(t *testing.T) {
	profiles := newFakeBackend[resume.ProfileSection]()
	a := newProfileOrchestrator(t, profiles, Options{})
	b := newProfileOrchestrator(t, profiles, Options{})

	_, doneA := a.Update(resume.ProfilePatch{Content: resume.String("a")})
	callA := receive(t, profiles.calls)
	_, doneB := b.Update(resume.ProfilePatch{Content: resume.String("b")})
	callB := receive(t, profiles.calls)

	callB.succeed(profile(2, "b"))
	callA.succeed(profile(1, "a"))

	assert.True(t, receive(t, doneA).Applied)
	assert.True(t, receive(t, doneB).Applied)
}

func TestPatchAndCurrentDoNotAliasStore(t *testing.T) {
	backend := newFakeBackend[resume.ExperienceSection]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	empty := func() resume.ExperienceSection { return resume.EmptyExperience(1) }
	o := New[resume.ExperienceSection, resume.ExperiencePatch](ctx, empty, backend.save, Options{Clock: clock.Fake(time.Unix(0, 0))})

	jobs := []resume.Job{{Position: resume.Position{ID: 1}, Bullets: []resume.Bullet{{Text: "built"}}}}
	returned, done := o.Update(resume.ExperiencePatch{Jobs: jobs})
	jobs[0].Bullets[0].Text = "patch reused"
	returned.Jobs[0].Bullets[0].Text = "return value edited"

	current, ok := o.Current()
	require.True(t, ok)
	current.Jobs[0].Bullets[0].Text = "current edited"

	call := receive(t, backend.calls)
	assert.Equal(t, "built", call.value.Jobs[0].Bullets[0].Text)
	call.succeed(call.value)
	require.True(t, receive(t, done).Applied)

	current, _ = o.Current()
	assert.Equal(t, "built", current.Jobs[0].Bullets[0].Text)
}
