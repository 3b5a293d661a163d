package resume

import "resumesync/internal/ordering"

// ContactItem is one contact line (e-mail, phone, profile link...).
type ContactItem struct {
	Position
	Title     string `json:"title"`
	Text      string `json:"text"`
	Link      string `json:"link"`
	SectionID int    `json:"section_id"`
}

func (c *ContactItem) Place(order, parentID int) { c.Order, c.SectionID = order, parentID }

type ContactSection struct {
	SectionMeta
	Items []ContactItem `json:"items"`
}

type ContactPatch struct {
	Title *string       `json:"title,omitempty"`
	Items []ContactItem `json:"items"`
}

// ProfileSection carries an opaque HTML string produced by the rich-text editor.
type ProfileSection struct {
	SectionMeta
	Content string `json:"content"`
}

type ProfilePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Skill struct {
	Position
	Name    string `json:"name"`
	GroupID int    `json:"group_id"`
}

func (s *Skill) Place(order, parentID int) { s.Order, s.GroupID = order, parentID }

// SkillGroup is a titled sub-list of skills.
type SkillGroup struct {
	Position
	Title     string  `json:"title"`
	SectionID int     `json:"section_id"`
	Skills    []Skill `json:"skills"`
}

func (g *SkillGroup) Place(order, parentID int) { g.Order, g.SectionID = order, parentID }

func (g *SkillGroup) NormalizeChildren() { g.Skills = ordering.Normalize(g.Skills, g.ID) }

type SkillsSection struct {
	SectionMeta
	Groups []SkillGroup `json:"groups"`
}

type SkillsPatch struct {
	Title  *string      `json:"title,omitempty"`
	Groups []SkillGroup `json:"groups"`
}

type Bullet struct {
	Position
	Text  string `json:"text"`
	JobID int    `json:"job_id"`
}

func (b *Bullet) Place(order, parentID int) { b.Order, b.JobID = order, parentID }

// Job is one position held; EndMonth/EndYear are nil while IsCurrent.
type Job struct {
	Position
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	StartMonth int      `json:"start_month"`
	StartYear  int      `json:"start_year"`
	EndMonth   *int     `json:"end_month"`
	EndYear    *int     `json:"end_year"`
	IsCurrent  bool     `json:"is_current"`
	SectionID  int      `json:"section_id"`
	Bullets    []Bullet `json:"bullets"`
}

func (j *Job) Place(order, parentID int) { j.Order, j.SectionID = order, parentID }

func (j *Job) NormalizeChildren() { j.Bullets = ordering.Normalize(j.Bullets, j.ID) }

type ExperienceSection struct {
	SectionMeta
	Jobs []Job `json:"jobs"`
}

type ExperiencePatch struct {
	Title *string `json:"title,omitempty"`
	Jobs  []Job   `json:"jobs"`
}

type Project struct {
	Position
	Name        string `json:"name"`
	Description string `json:"description"`
	SectionID   int    `json:"section_id"`
}

func (p *Project) Place(order, parentID int) { p.Order, p.SectionID = order, parentID }

type ProjectsSection struct {
	SectionMeta
	Projects []Project `json:"projects"`
}

type ProjectsPatch struct {
	Title    *string   `json:"title,omitempty"`
	Projects []Project `json:"projects"`
}

type EducationItem struct {
	Position
	Institution string `json:"institution"`
	Text        string `json:"text"`
	StartYear   int    `json:"start_year"`
	EndYear     *int   `json:"end_year"`
	IsCurrent   bool   `json:"is_current"`
	SectionID   int    `json:"section_id"`
}

func (e *EducationItem) Place(order, parentID int) { e.Order, e.SectionID = order, parentID }

type EducationSection struct {
	SectionMeta
	Items []EducationItem `json:"items"`
}

type EducationPatch struct {
	Title *string         `json:"title,omitempty"`
	Items []EducationItem `json:"items"`
}

// LanguageLevel is the self-assessed proficiency of a language entry.
type LanguageLevel string

const (
	LevelBeginner     LanguageLevel = "BEGINNER"
	LevelIntermediate LanguageLevel = "INTERMEDIATE"
	LevelAdvanced     LanguageLevel = "ADVANCED"
	LevelNativeFluent LanguageLevel = "NATIVE_FLUENT"
)

type LanguageItem struct {
	Position
	Language  string        `json:"language"`
	Level     LanguageLevel `json:"level" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED NATIVE_FLUENT"`
	SectionID int           `json:"section_id"`
}

func (l *LanguageItem) Place(order, parentID int) { l.Order, l.SectionID = order, parentID }

type LanguagesSection struct {
	SectionMeta
	Items []LanguageItem `json:"items" binding:"dive"`
}

type LanguagesPatch struct {
	Title *string        `json:"title,omitempty"`
	Items []LanguageItem `json:"items"`
}
