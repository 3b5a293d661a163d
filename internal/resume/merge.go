package resume

import "resumesync/internal/ordering"

// Default titles used when a section is created lazily on first edit.
const (
	DefaultContactTitle    = "Contact"
	DefaultProfileTitle    = "Professional Profile"
	DefaultSkillsTitle     = "Skills"
	DefaultExperienceTitle = "Professional Background"
	DefaultProjectsTitle   = "Projects"
	DefaultEducationTitle  = "Education"
	DefaultLanguagesTitle  = "Languages"
)

func EmptyContact(documentID int) ContactSection {
	return ContactSection{SectionMeta: newMeta(DefaultContactTitle, documentID), Items: []ContactItem{}}
}

func EmptyProfile(documentID int) ProfileSection {
	return ProfileSection{SectionMeta: newMeta(DefaultProfileTitle, documentID)}
}

func EmptySkills(documentID int) SkillsSection {
	return SkillsSection{SectionMeta: newMeta(DefaultSkillsTitle, documentID), Groups: []SkillGroup{}}
}

func EmptyExperience(documentID int) ExperienceSection {
	return ExperienceSection{SectionMeta: newMeta(DefaultExperienceTitle, documentID), Jobs: []Job{}}
}

func EmptyProjects(documentID int) ProjectsSection {
	return ProjectsSection{SectionMeta: newMeta(DefaultProjectsTitle, documentID), Projects: []Project{}}
}

func EmptyEducation(documentID int) EducationSection {
	return EducationSection{SectionMeta: newMeta(DefaultEducationTitle, documentID), Items: []EducationItem{}}
}

func EmptyLanguages(documentID int) LanguagesSection {
	return LanguagesSection{SectionMeta: newMeta(DefaultLanguagesTitle, documentID), Items: []LanguageItem{}}
}

func newMeta(title string, documentID int) SectionMeta {
	return SectionMeta{Title: title, DocumentID: documentID}
}

// reconcile prefers the server's identifiers and title, keeping ours for
// whatever the server left zero.
func (m SectionMeta) reconcile(server SectionMeta) SectionMeta {
	next := m
	if server.ID != 0 {
		next.ID = server.ID
	}
	if server.DocumentID != 0 {
		next.DocumentID = server.DocumentID
	}
	if server.Title != "" {
		next.Title = server.Title
	}
	return next
}

// reconcileEntries merges a server collection over the previous one. A nil
// server collection means the server did not echo it; the previous entries
// are kept. Each server entry is laid over the previous entry with the same
// id by merge, then the whole collection is normalized against parentID.
func reconcileEntries[E any, P ordering.Placeable[E]](previous, server []E, parentID int, merge func(previous *E, server E) E) []E {
	if server == nil {
		return ordering.Normalize[E, P](previous, parentID)
	}

	byID := make(map[int]*E, len(previous))
	for i := range previous {
		byID[P(&previous[i]).EntityID()] = &previous[i]
	}

	merged := make([]E, 0, len(server))
	for _, entry := range server {
		prev, ok := byID[P(&entry).EntityID()]
		if ok && merge != nil {
			entry = merge(prev, entry)
		}
		merged = append(merged, entry)
	}
	return ordering.Normalize[E, P](merged, parentID)
}

func (h Header) Apply(p HeaderPatch) Header {
	next := h
	assign(&next.Name, p.Name)
	assign(&next.HeaderName, p.HeaderName)
	assign(&next.JobTitle, p.JobTitle)
	assign(&next.CompanyName, p.CompanyName)
	assign(&next.MetaTitle, p.MetaTitle)
	assign(&next.HeaderRole, p.HeaderRole)
	return next
}

// Reconcile takes the server's header; the header has no nested data to preserve.
func (h Header) Reconcile(server Header) Header {
	return server
}

func (s ContactSection) Apply(p ContactPatch) ContactSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Items != nil {
		next.Items = ordering.Normalize(p.Items, next.ID)
	}
	return next
}

func (s ContactSection) Reconcile(server ContactSection) ContactSection {
	next := ContactSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Items = reconcileEntries(s.Items, server.Items, next.ID, nil)
	return next
}

func (s ProfileSection) Apply(p ProfilePatch) ProfileSection {
	next := s
	assign(&next.Title, p.Title)
	assign(&next.Content, p.Content)
	return next
}

func (s ProfileSection) Reconcile(server ProfileSection) ProfileSection {
	return ProfileSection{
		SectionMeta: s.SectionMeta.reconcile(server.SectionMeta),
		Content:     server.Content,
	}
}

func (s SkillsSection) Apply(p SkillsPatch) SkillsSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Groups != nil {
		next.Groups = ordering.Normalize(p.Groups, next.ID)
	}
	return next
}

func (s SkillsSection) Reconcile(server SkillsSection) SkillsSection {
	next := SkillsSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Groups = reconcileEntries(s.Groups, server.Groups, next.ID, func(prev *SkillGroup, srv SkillGroup) SkillGroup {
		if srv.Skills == nil {
			srv.Skills = prev.Skills
		}
		return srv
	})
	return next
}

func (s ExperienceSection) Apply(p ExperiencePatch) ExperienceSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Jobs != nil {
		next.Jobs = ordering.Normalize(p.Jobs, next.ID)
	}
	return next
}

func (s ExperienceSection) Reconcile(server ExperienceSection) ExperienceSection {
	next := ExperienceSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Jobs = reconcileEntries(s.Jobs, server.Jobs, next.ID, func(prev *Job, srv Job) Job {
		if srv.Bullets == nil {
			srv.Bullets = prev.Bullets
		}
		return srv
	})
	return next
}

func (s ProjectsSection) Apply(p ProjectsPatch) ProjectsSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Projects != nil {
		next.Projects = ordering.Normalize(p.Projects, next.ID)
	}
	return next
}

func (s ProjectsSection) Reconcile(server ProjectsSection) ProjectsSection {
	next := ProjectsSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Projects = reconcileEntries(s.Projects, server.Projects, next.ID, nil)
	return next
}

func (s EducationSection) Apply(p EducationPatch) EducationSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Items != nil {
		next.Items = ordering.Normalize(p.Items, next.ID)
	}
	return next
}

func (s EducationSection) Reconcile(server EducationSection) EducationSection {
	next := EducationSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Items = reconcileEntries(s.Items, server.Items, next.ID, nil)
	return next
}

func (s LanguagesSection) Apply(p LanguagesPatch) LanguagesSection {
	next := s
	assign(&next.Title, p.Title)
	if p.Items != nil {
		next.Items = ordering.Normalize(p.Items, next.ID)
	}
	return next
}

func (s LanguagesSection) Reconcile(server LanguagesSection) LanguagesSection {
	next := LanguagesSection{SectionMeta: s.SectionMeta.reconcile(server.SectionMeta)}
	next.Items = reconcileEntries(s.Items, server.Items, next.ID, nil)
	return next
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
