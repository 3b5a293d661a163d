package resume

// SectionKey names one independently saved part of a document. "header" is
// the document's own scalar fields; the rest are sections.
type SectionKey string

const (
	SectionHeader     SectionKey = "header"
	SectionContact    SectionKey = "contact"
	SectionProfile    SectionKey = "profile"
	SectionSkills     SectionKey = "skills"
	SectionExperience SectionKey = "experience"
	SectionProjects   SectionKey = "projects"
	SectionEducation  SectionKey = "education"
	SectionLanguages  SectionKey = "languages"
)

// SectionKeys lists the section kinds in display order, header excluded.
var SectionKeys = []SectionKey{
	SectionContact,
	SectionProfile,
	SectionSkills,
	SectionExperience,
	SectionProjects,
	SectionEducation,
	SectionLanguages,
}

// Valid reports whether k is the header or a known section kind.
func (k SectionKey) Valid() bool {
	if k == SectionHeader {
		return true
	}
	for _, key := range SectionKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Document is the aggregate root: header fields plus one optional value per section.
type Document struct {
	ID int `json:"id"`
	Header

	Contact    *ContactSection    `json:"contact"`
	Profile    *ProfileSection    `json:"profile"`
	Skills     *SkillsSection     `json:"skills"`
	Experience *ExperienceSection `json:"experience"`
	Projects   *ProjectsSection   `json:"projects"`
	Education  *EducationSection  `json:"education"`
	Languages  *LanguagesSection  `json:"languages"`
}

// Header holds the document-level scalar fields.
type Header struct {
	Name        string `json:"name"`
	HeaderName  string `json:"header_name"`
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	MetaTitle   string `json:"meta_title"`
	HeaderRole  string `json:"header_role"`
}

// HeaderPatch is a partial header update; nil fields are left untouched.
type HeaderPatch struct {
	Name        *string `json:"name,omitempty"`
	HeaderName  *string `json:"header_name,omitempty"`
	JobTitle    *string `json:"job_title,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	MetaTitle   *string `json:"meta_title,omitempty"`
	HeaderRole  *string `json:"header_role,omitempty"`
}

// CreateDocumentRequest is the payload of the document create action.
type CreateDocumentRequest struct {
	Name        string `json:"name" binding:"required"`
	JobTitle    string `json:"job_title" binding:"required"`
	CompanyName string `json:"company_name"`
}

// SectionMeta is shared by every section.
type SectionMeta struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	DocumentID int    `json:"document_id"`
}

// Position is shared by every entry and sub-entry.
type Position struct {
	ID    int `json:"id"`
	Order int `json:"order"`
}

func (p Position) EntityID() int       { return p.ID }
func (p Position) EntityOrder() int    { return p.Order }
func (p *Position) SetEntityID(id int) { p.ID = id }

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }
