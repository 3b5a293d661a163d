package resume

import "resumesync/internal/ordering"

// The Canonical methods produce the value the server persists and echoes:
// identifiers stamped, default title filled in, collections normalized.

func (s ContactSection) Canonical(sectionID, documentID int) ContactSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultContactTitle)
	items := ordering.Normalize(s.Items, sectionID)
	for i := range items {
		items[i].Link = NormalizeLink(items[i].Link)
	}
	s.Items = items
	return s
}

func (s ProfileSection) Canonical(sectionID, documentID int) ProfileSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultProfileTitle)
	return s
}

func (s SkillsSection) Canonical(sectionID, documentID int) SkillsSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultSkillsTitle)
	s.Groups = ordering.Normalize(s.Groups, sectionID)
	return s
}

func (s ExperienceSection) Canonical(sectionID, documentID int) ExperienceSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultExperienceTitle)
	s.Jobs = ordering.Normalize(s.Jobs, sectionID)
	return s
}

func (s ProjectsSection) Canonical(sectionID, documentID int) ProjectsSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultProjectsTitle)
	s.Projects = ordering.Normalize(s.Projects, sectionID)
	return s
}

func (s EducationSection) Canonical(sectionID, documentID int) EducationSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultEducationTitle)
	s.Items = ordering.Normalize(s.Items, sectionID)
	return s
}

func (s LanguagesSection) Canonical(sectionID, documentID int) LanguagesSection {
	s.SectionMeta = s.SectionMeta.canonical(sectionID, documentID, DefaultLanguagesTitle)
	s.Items = ordering.Normalize(s.Items, sectionID)
	return s
}

func (m SectionMeta) canonical(sectionID, documentID int, defaultTitle string) SectionMeta {
	m.ID = sectionID
	m.DocumentID = documentID
	if m.Title == "" {
		m.Title = defaultTitle
	}
	return m
}
