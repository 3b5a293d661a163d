// Package editor is the document aggregate of an open resume: one autosave
// orchestrator per section plus the header, a local recovery snapshot and
// the navigation state the presentation layer drives.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"resumesync/internal/autosave"
	"resumesync/internal/clock"
	"resumesync/internal/resume"
	"resumesync/internal/snapshot"
)

var (
	// ErrNotLoaded is returned when an operation needs document data that
	// neither Load nor Recover has provided yet.
	ErrNotLoaded = errors.New("document not loaded")
	// ErrUnknownSection is returned for a section key outside the fixed set.
	ErrUnknownSection = errors.New("unknown section")
)

// Session is one open document. It is safe for concurrent use; edits to the
// same section are applied in call order.
type Session struct {
	id        int
	api       API
	log       *slog.Logger
	snapshots *snapshot.Writer

	cancel context.CancelFunc

	header     *autosave.Orchestrator[resume.Header, resume.HeaderPatch]
	contact    *autosave.Orchestrator[resume.ContactSection, resume.ContactPatch]
	profile    *autosave.Orchestrator[resume.ProfileSection, resume.ProfilePatch]
	skills     *autosave.Orchestrator[resume.SkillsSection, resume.SkillsPatch]
	experience *autosave.Orchestrator[resume.ExperienceSection, resume.ExperiencePatch]
	projects   *autosave.Orchestrator[resume.ProjectsSection, resume.ProjectsPatch]
	education  *autosave.Orchestrator[resume.EducationSection, resume.EducationPatch]
	languages  *autosave.Orchestrator[resume.LanguagesSection, resume.LanguagesPatch]

	machines map[resume.SectionKey]machine
	nav      *Navigation

	loaded    atomic.Bool
	recovered atomic.Bool
}

// machine is the type-erased view of one orchestrator.
type machine struct {
	status func() autosave.Status
	flush  func() <-chan error
	stop   func()
}

// Open builds the session for documentID. Nothing is fetched until Load.
func Open(ctx context.Context, api API, documentID int, opts ...Option) *Session {
	o := options{
		clock:          clock.Real(),
		logger:         slog.Default(),
		headerDebounce: DefaultHeaderDebounce,
		quiet:          autosave.DefaultQuiet,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        documentID,
		api:       api,
		log:       o.logger.With(slog.Int("document_id", documentID)),
		snapshots: o.snapshots,
		cancel:    cancel,
		nav:       NewNavigation(),
	}

	optionsFor := func(key resume.SectionKey, debounce time.Duration) autosave.Options {
		return autosave.Options{
			Name:     string(key),
			Debounce: debounce,
			Quiet:    o.quiet,
			Clock:    o.clock,
			Logger:   s.log,
			Recorder: o.recorder,
			OnChange: s.scheduleSnapshot,
			OnStatus: func(st autosave.Status) {
				if o.onStatus != nil {
					o.onStatus(key, st)
				}
			},
			OnError: func(err error) {
				if o.onError != nil {
					o.onError(key, err)
				}
			},
		}
	}

	id := documentID
	s.header = autosave.New[resume.Header, resume.HeaderPatch](ctx,
		func() resume.Header { return resume.Header{} },
		func(ctx context.Context, v resume.Header) (resume.Header, error) { return api.UpdateHeader(ctx, id, v) },
		optionsFor(resume.SectionHeader, o.headerDebounce))
	s.contact = autosave.New[resume.ContactSection, resume.ContactPatch](ctx,
		func() resume.ContactSection { return resume.EmptyContact(id) },
		func(ctx context.Context, v resume.ContactSection) (resume.ContactSection, error) {
			return api.SaveContact(ctx, id, v)
		},
		optionsFor(resume.SectionContact, o.sectionDebounce))
	s.profile = autosave.New[resume.ProfileSection, resume.ProfilePatch](ctx,
		func() resume.ProfileSection { return resume.EmptyProfile(id) },
		func(ctx context.Context, v resume.ProfileSection) (resume.ProfileSection, error) {
			return api.SaveProfile(ctx, id, v)
		},
		optionsFor(resume.SectionProfile, o.sectionDebounce))
	s.skills = autosave.New[resume.SkillsSection, resume.SkillsPatch](ctx,
		func() resume.SkillsSection { return resume.EmptySkills(id) },
		func(ctx context.Context, v resume.SkillsSection) (resume.SkillsSection, error) {
			return api.SaveSkills(ctx, id, v)
		},
		optionsFor(resume.SectionSkills, o.sectionDebounce))
	s.experience = autosave.New[resume.ExperienceSection, resume.ExperiencePatch](ctx,
		func() resume.ExperienceSection { return resume.EmptyExperience(id) },
		func(ctx context.Context, v resume.ExperienceSection) (resume.ExperienceSection, error) {
			return api.SaveExperience(ctx, id, v)
		},
		optionsFor(resume.SectionExperience, o.sectionDebounce))
	s.projects = autosave.New[resume.ProjectsSection, resume.ProjectsPatch](ctx,
		func() resume.ProjectsSection { return resume.EmptyProjects(id) },
		func(ctx context.Context, v resume.ProjectsSection) (resume.ProjectsSection, error) {
			return api.SaveProjects(ctx, id, v)
		},
		optionsFor(resume.SectionProjects, o.sectionDebounce))
	s.education = autosave.New[resume.EducationSection, resume.EducationPatch](ctx,
		func() resume.EducationSection { return resume.EmptyEducation(id) },
		func(ctx context.Context, v resume.EducationSection) (resume.EducationSection, error) {
			return api.SaveEducation(ctx, id, v)
		},
		optionsFor(resume.SectionEducation, o.sectionDebounce))
	s.languages = autosave.New[resume.LanguagesSection, resume.LanguagesPatch](ctx,
		func() resume.LanguagesSection { return resume.EmptyLanguages(id) },
		func(ctx context.Context, v resume.LanguagesSection) (resume.LanguagesSection, error) {
			return api.SaveLanguages(ctx, id, v)
		},
		optionsFor(resume.SectionLanguages, o.sectionDebounce))

	s.machines = map[resume.SectionKey]machine{
		resume.SectionHeader:     machineOf(s.header),
		resume.SectionContact:    machineOf(s.contact),
		resume.SectionProfile:    machineOf(s.profile),
		resume.SectionSkills:     machineOf(s.skills),
		resume.SectionExperience: machineOf(s.experience),
		resume.SectionProjects:   machineOf(s.projects),
		resume.SectionEducation:  machineOf(s.education),
		resume.SectionLanguages:  machineOf(s.languages),
	}
	return s
}

func machineOf[S autosave.Section[S, P], P any](o *autosave.Orchestrator[S, P]) machine {
	return machine{
		status: o.Status,
		stop:   o.Stop,
		flush: func() <-chan error {
			out := make(chan error, 1)
			done := o.Flush()
			go func() {
				res := <-done
				out <- res.Err
				close(out)
			}()
			return out
		},
	}
}

// ID returns the document id.
func (s *Session) ID() int { return s.id }

// Navigation returns the session's view state.
func (s *Session) Navigation() *Navigation { return s.nav }

// Load fetches the document and replaces every section with the server copy.
// All save indicators return to idle and the snapshot is rewritten.
func (s *Session) Load(ctx context.Context) error {
	doc, err := s.api.GetDocument(ctx, s.id)
	if err != nil {
		return fmt.Errorf("load document %d: %w", s.id, err)
	}
	if doc.ID == 0 {
		doc.ID = s.id
	}

	s.hydrate(doc)
	s.loaded.Store(true)
	s.log.Info("document loaded")

	if s.snapshots != nil {
		if err := s.snapshots.Write(ctx, s.Document()); err != nil {
			s.log.Warn("write local snapshot after load failed", slog.Any("error", err))
		}
	}
	return nil
}

// Recover hydrates the session from the local snapshot when no load has
// completed and the snapshot belongs to this document. It reports whether
// the snapshot was used.
func (s *Session) Recover(ctx context.Context) (bool, error) {
	if s.snapshots == nil || s.loaded.Load() {
		return false, nil
	}

	snap, err := s.snapshots.Read(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read local snapshot: %w", err)
	}
	if snap.DocumentID != s.id {
		s.log.Info("local snapshot belongs to another document, ignoring",
			slog.Int("snapshot_document_id", snap.DocumentID))
		return false, nil
	}
	if s.loaded.Load() {
		return false, nil
	}

	s.hydrate(snap.Document)
	s.recovered.Store(true)
	s.log.Info("document recovered from local snapshot", slog.Time("saved_at", snap.SavedAt))
	return true, nil
}

// Loaded reports whether a Load has completed.
func (s *Session) Loaded() bool { return s.loaded.Load() }

func (s *Session) hydrate(doc resume.Document) {
	header := doc.Header
	s.header.Hydrate(&header)
	s.contact.Hydrate(doc.Contact)
	s.profile.Hydrate(doc.Profile)
	s.skills.Hydrate(doc.Skills)
	s.experience.Hydrate(doc.Experience)
	s.projects.Hydrate(doc.Projects)
	s.education.Hydrate(doc.Education)
	s.languages.Hydrate(doc.Languages)
}

// Document returns the union of every section. Sections never edited nor
// loaded are nil.
func (s *Session) Document() resume.Document {
	header, _ := s.header.Current()
	return resume.Document{
		ID:         s.id,
		Header:     header,
		Contact:    current(s.contact),
		Profile:    current(s.profile),
		Skills:     current(s.skills),
		Experience: current(s.experience),
		Projects:   current(s.projects),
		Education:  current(s.education),
		Languages:  current(s.languages),
	}
}

func current[S autosave.Section[S, P], P any](o *autosave.Orchestrator[S, P]) *S {
	value, ok := o.Current()
	if !ok {
		return nil
	}
	return &value
}

func (s *Session) UpdateHeader(p resume.HeaderPatch) (resume.Header, <-chan autosave.Result[resume.Header]) {
	return s.header.Update(p)
}

func (s *Session) UpdateContact(p resume.ContactPatch) (resume.ContactSection, <-chan autosave.Result[resume.ContactSection]) {
	return s.contact.Update(p)
}

func (s *Session) UpdateProfile(p resume.ProfilePatch) (resume.ProfileSection, <-chan autosave.Result[resume.ProfileSection]) {
	return s.profile.Update(p)
}

func (s *Session) UpdateSkills(p resume.SkillsPatch) (resume.SkillsSection, <-chan autosave.Result[resume.SkillsSection]) {
	return s.skills.Update(p)
}

func (s *Session) UpdateExperience(p resume.ExperiencePatch) (resume.ExperienceSection, <-chan autosave.Result[resume.ExperienceSection]) {
	return s.experience.Update(p)
}

func (s *Session) UpdateProjects(p resume.ProjectsPatch) (resume.ProjectsSection, <-chan autosave.Result[resume.ProjectsSection]) {
	return s.projects.Update(p)
}

func (s *Session) UpdateEducation(p resume.EducationPatch) (resume.EducationSection, <-chan autosave.Result[resume.EducationSection]) {
	return s.education.Update(p)
}

func (s *Session) UpdateLanguages(p resume.LanguagesPatch) (resume.LanguagesSection, <-chan autosave.Result[resume.LanguagesSection]) {
	return s.languages.Update(p)
}

func (s *Session) Contact() *ContactItems {
	return &ContactItems{
		machine: s.contact,
		items:   func(v resume.ContactSection) []resume.ContactItem { return v.Items },
		patch:   func(items []resume.ContactItem) resume.ContactPatch { return resume.ContactPatch{Items: items} },
		parent:  func(v resume.ContactSection) int { return v.ID },
	}
}

func (s *Session) Skills() *SkillGroups {
	return &SkillGroups{
		machine: s.skills,
		items:   func(v resume.SkillsSection) []resume.SkillGroup { return v.Groups },
		patch:   func(groups []resume.SkillGroup) resume.SkillsPatch { return resume.SkillsPatch{Groups: groups} },
		parent:  func(v resume.SkillsSection) int { return v.ID },
	}
}

func (s *Session) Experience() *Jobs {
	return &Jobs{
		machine: s.experience,
		items:   func(v resume.ExperienceSection) []resume.Job { return v.Jobs },
		patch:   func(jobs []resume.Job) resume.ExperiencePatch { return resume.ExperiencePatch{Jobs: jobs} },
		parent:  func(v resume.ExperienceSection) int { return v.ID },
	}
}

func (s *Session) Projects() *ProjectItems {
	return &ProjectItems{
		machine: s.projects,
		items:   func(v resume.ProjectsSection) []resume.Project { return v.Projects },
		patch:   func(projects []resume.Project) resume.ProjectsPatch { return resume.ProjectsPatch{Projects: projects} },
		parent:  func(v resume.ProjectsSection) int { return v.ID },
	}
}

func (s *Session) Education() *EducationItems {
	return &EducationItems{
		machine: s.education,
		items:   func(v resume.EducationSection) []resume.EducationItem { return v.Items },
		patch:   func(items []resume.EducationItem) resume.EducationPatch { return resume.EducationPatch{Items: items} },
		parent:  func(v resume.EducationSection) int { return v.ID },
	}
}

func (s *Session) Languages() *LanguageEntries {
	return &LanguageEntries{
		machine: s.languages,
		items:   func(v resume.LanguagesSection) []resume.LanguageItem { return v.Items },
		patch:   func(items []resume.LanguageItem) resume.LanguagesPatch { return resume.LanguagesPatch{Items: items} },
		parent:  func(v resume.LanguagesSection) int { return v.ID },
	}
}

// Status returns the save indicator of one section (or the header).
func (s *Session) Status(key resume.SectionKey) (autosave.Status, error) {
	m, ok := s.machines[key]
	if !ok {
		return "", ErrUnknownSection
	}
	return m.status(), nil
}

// SaveStatus is the document-wide indicator over the header and all sections.
func (s *Session) SaveStatus() autosave.Status {
	statuses := make([]autosave.Status, 0, len(s.machines))
	for _, m := range s.machines {
		statuses = append(statuses, m.status())
	}
	return autosave.Combine(statuses...)
}

// Retry re-sends the current value of one section, typically after a failed
// save. The channel yields the outcome (nil on success or when superseded).
func (s *Session) Retry(key resume.SectionKey) (<-chan error, error) {
	m, ok := s.machines[key]
	if !ok {
		return nil, ErrUnknownSection
	}
	return m.flush(), nil
}

// WriteSnapshot stores the current document locally right away.
func (s *Session) WriteSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	if !s.loaded.Load() && !s.recovered.Load() {
		return ErrNotLoaded
	}
	return s.snapshots.Write(ctx, s.Document())
}

// scheduleSnapshot queues a debounced snapshot write. Before any load or
// recovery the stored snapshot is left alone so a crash copy is not
// overwritten by a nearly empty document.
func (s *Session) scheduleSnapshot() {
	if s.snapshots == nil {
		return
	}
	if !s.loaded.Load() && !s.recovered.Load() {
		return
	}
	s.snapshots.Schedule(s.Document)
}

// Close flushes the pending snapshot, stops every orchestrator and cancels
// requests still in flight.
func (s *Session) Close(ctx context.Context) error {
	var err error
	if s.snapshots != nil {
		err = s.snapshots.Flush(ctx)
	}
	for _, m := range s.machines {
		m.stop()
	}
	s.cancel()
	return err
}
