package resume

import "slices"

// Clone methods return values that share no memory with the receiver, so a
// copy handed out of the editor can be changed without touching its store.

func (h Header) Clone() Header { return h }

func (s ContactSection) Clone() ContactSection {
	s.Items = slices.Clone(s.Items)
	return s
}

func (s ProfileSection) Clone() ProfileSection { return s }

func (g SkillGroup) Clone() SkillGroup {
	g.Skills = slices.Clone(g.Skills)
	return g
}

func (s SkillsSection) Clone() SkillsSection {
	s.Groups = cloneEach(s.Groups, SkillGroup.Clone)
	return s
}

func (j Job) Clone() Job {
	j.EndMonth = cloneInt(j.EndMonth)
	j.EndYear = cloneInt(j.EndYear)
	j.Bullets = slices.Clone(j.Bullets)
	return j
}

func (s ExperienceSection) Clone() ExperienceSection {
	s.Jobs = cloneEach(s.Jobs, Job.Clone)
	return s
}

func (s ProjectsSection) Clone() ProjectsSection {
	s.Projects = slices.Clone(s.Projects)
	return s
}

func (e EducationItem) Clone() EducationItem {
	e.EndYear = cloneInt(e.EndYear)
	return e
}

func (s EducationSection) Clone() EducationSection {
	s.Items = cloneEach(s.Items, EducationItem.Clone)
	return s
}

func (s LanguagesSection) Clone() LanguagesSection {
	s.Items = slices.Clone(s.Items)
	return s
}

// Clone deep-copies every present section.
func (d Document) Clone() Document {
	d.Contact = clonePtr(d.Contact, ContactSection.Clone)
	d.Profile = clonePtr(d.Profile, ProfileSection.Clone)
	d.Skills = clonePtr(d.Skills, SkillsSection.Clone)
	d.Experience = clonePtr(d.Experience, ExperienceSection.Clone)
	d.Projects = clonePtr(d.Projects, ProjectsSection.Clone)
	d.Education = clonePtr(d.Education, EducationSection.Clone)
	d.Languages = clonePtr(d.Languages, LanguagesSection.Clone)
	return d
}

// cloneEach keeps nil as nil; the merge treats a nil collection as "not sent".
func cloneEach[E any](items []E, clone func(E) E) []E {
	if items == nil {
		return nil
	}
	out := make([]E, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

func clonePtr[S any](v *S, clone func(S) S) *S {
	if v == nil {
		return nil
	}
	c := clone(*v)
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
