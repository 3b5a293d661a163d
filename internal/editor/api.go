package editor

import (
	"context"

	"resumesync/internal/resume"
)

// API is the section persistence service a Session saves through. Every Save
// call sends the full section and returns the server's canonical copy.
type API interface {
	GetDocument(ctx context.Context, documentID int) (resume.Document, error)
	UpdateHeader(ctx context.Context, documentID int, header resume.Header) (resume.Header, error)
	SaveContact(ctx context.Context, documentID int, section resume.ContactSection) (resume.ContactSection, error)
	SaveProfile(ctx context.Context, documentID int, section resume.ProfileSection) (resume.ProfileSection, error)
	SaveSkills(ctx context.Context, documentID int, section resume.SkillsSection) (resume.SkillsSection, error)
	SaveExperience(ctx context.Context, documentID int, section resume.ExperienceSection) (resume.ExperienceSection, error)
	SaveProjects(ctx context.Context, documentID int, section resume.ProjectsSection) (resume.ProjectsSection, error)
	SaveEducation(ctx context.Context, documentID int, section resume.EducationSection) (resume.EducationSection, error)
	SaveLanguages(ctx context.Context, documentID int, section resume.LanguagesSection) (resume.LanguagesSection, error)
}
