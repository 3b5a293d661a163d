package client

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"resumesync/internal/resume"
)

// PushDocument writes the header and every present section of doc to the
// document with doc's id, concurrently. It returns the server's copy of
// everything written.
func (c *Client) PushDocument(ctx context.Context, doc resume.Document) (resume.Document, error) {
	if doc.ID == 0 {
		return resume.Document{}, fmt.Errorf("push document: missing document id")
	}

	var (
		mu  sync.Mutex
		out = resume.Document{ID: doc.ID}
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		header, err := c.UpdateHeader(ctx, doc.ID, doc.Header)
		if err != nil {
			return fmt.Errorf("update header: %w", err)
		}
		mu.Lock()
		out.Header = header
		mu.Unlock()
		return nil
	})
	pushSection(g, &mu, doc.Contact, &out.Contact, func(s resume.ContactSection) (resume.ContactSection, error) {
		return c.SaveContact(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Profile, &out.Profile, func(s resume.ProfileSection) (resume.ProfileSection, error) {
		return c.SaveProfile(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Skills, &out.Skills, func(s resume.SkillsSection) (resume.SkillsSection, error) {
		return c.SaveSkills(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Experience, &out.Experience, func(s resume.ExperienceSection) (resume.ExperienceSection, error) {
		return c.SaveExperience(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Projects, &out.Projects, func(s resume.ProjectsSection) (resume.ProjectsSection, error) {
		return c.SaveProjects(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Education, &out.Education, func(s resume.EducationSection) (resume.EducationSection, error) {
		return c.SaveEducation(ctx, doc.ID, s)
	})
	pushSection(g, &mu, doc.Languages, &out.Languages, func(s resume.LanguagesSection) (resume.LanguagesSection, error) {
		return c.SaveLanguages(ctx, doc.ID, s)
	})

	if err := g.Wait(); err != nil {
		return resume.Document{}, err
	}
	return out, nil
}

func pushSection[S any](g *errgroup.Group, mu *sync.Mutex, section *S, dst **S, save func(S) (S, error)) {
	if section == nil {
		return
	}
	g.Go(func() error {
		saved, err := save(*section)
		if err != nil {
			return err
		}
		mu.Lock()
		*dst = &saved
		mu.Unlock()
		return nil
	})
}
