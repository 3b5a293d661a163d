package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bullets(texts ...string) []Bullet {
	out := make([]Bullet, 0, len(texts))
	for i, text := range texts {
		out = append(out, Bullet{Position: Position{ID: i + 1, Order: i}, Text: text})
	}
	return out
}

func TestEmptyDefaults(t *testing.T) {
	exp := EmptyExperience(7)
	assert.Equal(t, DefaultExperienceTitle, exp.Title)
	assert.Equal(t, 7, exp.DocumentID)
	assert.Zero(t, exp.ID)
	assert.NotNil(t, exp.Jobs)

	assert.Equal(t, DefaultProfileTitle, EmptyProfile(7).Title)
	assert.NotNil(t, EmptySkills(7).Groups)
}

func TestApplyOnlyTouchesPresentFields(t *testing.T) {
	current := ContactSection{
		SectionMeta: SectionMeta{ID: 3, Title: "Reach me", DocumentID: 1},
		Items:       []ContactItem{{Position: Position{ID: 1}, Title: "Email", Text: "a@b.c", SectionID: 3}},
	}

	renamed := current.Apply(ContactPatch{Title: String("Contact me")})
	assert.Equal(t, "Contact me", renamed.Title)
	assert.Equal(t, current.Items, renamed.Items)

	cleared := current.Apply(ContactPatch{Items: []ContactItem{}})
	assert.Equal(t, "Reach me", cleared.Title)
	assert.Empty(t, cleared.Items)
}

func TestApplyNormalizesCollections(t *testing.T) {
	current := EmptyExperience(1)
	current.ID = 9

	next := current.Apply(ExperiencePatch{Jobs: []Job{
		{Position: Position{ID: 2, Order: 5}, Company: "B", Bullets: []Bullet{{Position: Position{ID: 1, Order: 3}}}},
		{Position: Position{ID: 1, Order: 1}, Company: "A"},
	}})

	require.Len(t, next.Jobs, 2)
	assert.Equal(t, "A", next.Jobs[0].Company)
	assert.Equal(t, 0, next.Jobs[0].Order)
	assert.Equal(t, 1, next.Jobs[1].Order)
	for _, job := range next.Jobs {
		assert.Equal(t, 9, job.SectionID)
	}
	assert.Equal(t, 0, next.Jobs[1].Bullets[0].Order)
	assert.Equal(t, 2, next.Jobs[1].Bullets[0].JobID)
}

func TestReconcileKeepsBulletsServerOmitted(t *testing.T) {
	optimistic := EmptyExperience(1).Apply(ExperiencePatch{Jobs: []Job{
		{Position: Position{ID: 1}, Company: "Acme", Bullets: bullets("shipped", "scaled")},
	}})

	server := ExperienceSection{
		SectionMeta: SectionMeta{ID: 40, DocumentID: 1, Title: DefaultExperienceTitle},
		Jobs:        []Job{{Position: Position{ID: 1, Order: 0}, Company: "Acme Corp"}},
	}

	merged := optimistic.Reconcile(server)

	require.Len(t, merged.Jobs, 1)
	job := merged.Jobs[0]
	assert.Equal(t, "Acme Corp", job.Company)
	assert.Equal(t, 40, job.SectionID)
	require.Len(t, job.Bullets, 2)
	assert.Equal(t, "shipped", job.Bullets[0].Text)
	assert.Equal(t, "scaled", job.Bullets[1].Text)
	for _, b := range job.Bullets {
		assert.Equal(t, 1, b.JobID)
	}
}

func TestReconcilePrefersServerBullets(t *testing.T) {
	optimistic := EmptyExperience(1).Apply(ExperiencePatch{Jobs: []Job{
		{Position: Position{ID: 1}, Bullets: bullets("draft")},
	}})
	server := ExperienceSection{Jobs: []Job{{Position: Position{ID: 1}, Bullets: []Bullet{}}}}

	merged := optimistic.Reconcile(server)

	assert.Empty(t, merged.Jobs[0].Bullets)
}

func TestReconcileFallsBackWhenCollectionMissing(t *testing.T) {
	optimistic := EmptyLanguages(1).Apply(LanguagesPatch{Items: []LanguageItem{
		{Position: Position{ID: 1}, Language: "Portuguese", Level: LevelNativeFluent},
	}})

	merged := optimistic.Reconcile(LanguagesSection{SectionMeta: SectionMeta{ID: 12}})

	assert.Equal(t, 12, merged.ID)
	assert.Equal(t, DefaultLanguagesTitle, merged.Title)
	assert.Equal(t, 1, merged.DocumentID)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, "Portuguese", merged.Items[0].Language)
	assert.Equal(t, 12, merged.Items[0].SectionID)
}

func TestReconcileUsesServerOrder(t *testing.T) {
	optimistic := EmptyProjects(1).Apply(ProjectsPatch{Projects: []Project{
		{Position: Position{ID: 1}, Name: "one"},
		{Position: Position{ID: 2}, Name: "two"},
	}})
	server := ProjectsSection{Projects: []Project{
		{Position: Position{ID: 1, Order: 1}, Name: "one"},
		{Position: Position{ID: 2, Order: 0}, Name: "two"},
	}}

	merged := optimistic.Reconcile(server)

	assert.Equal(t, "two", merged.Projects[0].Name)
	assert.Equal(t, "one", merged.Projects[1].Name)
}

func TestReconcileSkillsKeepsSkills(t *testing.T) {
	optimistic := EmptySkills(1).Apply(SkillsPatch{Groups: []SkillGroup{
		{Position: Position{ID: 1}, Title: "Languages", Skills: []Skill{{Position: Position{ID: 1}, Name: "Go"}}},
	}})
	server := SkillsSection{SectionMeta: SectionMeta{ID: 5}, Groups: []SkillGroup{{Position: Position{ID: 1}, Title: "Programming"}}}

	merged := optimistic.Reconcile(server)

	require.Len(t, merged.Groups[0].Skills, 1)
	assert.Equal(t, "Go", merged.Groups[0].Skills[0].Name)
	assert.Equal(t, "Programming", merged.Groups[0].Title)
	assert.Equal(t, 5, merged.Groups[0].SectionID)
}

func TestProfileReconcileTakesServerContent(t *testing.T) {
	current := EmptyProfile(2).Apply(ProfilePatch{Content: String("<p>draft</p>")})

	merged := current.Reconcile(ProfileSection{SectionMeta: SectionMeta{ID: 3}, Content: "<p>saved</p>"})

	assert.Equal(t, "<p>saved</p>", merged.Content)
	assert.Equal(t, 3, merged.ID)
	assert.Equal(t, 2, merged.DocumentID)
}

func TestHeaderApply(t *testing.T) {
	h := Header{Name: "CV", JobTitle: "Engineer"}

	next := h.Apply(HeaderPatch{JobTitle: String("Staff Engineer")})

	assert.Equal(t, "CV", next.Name)
	assert.Equal(t, "Staff Engineer", next.JobTitle)
}

func TestCanonicalStampsIdentifiers(t *testing.T) {
	s := ContactSection{Items: []ContactItem{
		{Position: Position{ID: 4, Order: 2}, Link: "github.com/me"},
		{Position: Position{ID: 9, Order: 1}, Link: "mailto:me@example.com"},
	}}

	out := s.Canonical(30, 2)

	assert.Equal(t, 30, out.ID)
	assert.Equal(t, 2, out.DocumentID)
	assert.Equal(t, DefaultContactTitle, out.Title)
	assert.Equal(t, 9, out.Items[0].ID)
	assert.Equal(t, "mailto:me@example.com", out.Items[0].Link)
	assert.Equal(t, "https://github.com/me", out.Items[1].Link)
	assert.Equal(t, 30, out.Items[1].SectionID)
}
