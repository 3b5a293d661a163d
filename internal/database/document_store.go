package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumesync/internal/resume"
)

// ErrDocumentNotFound is returned when the document id does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists documents and their sections.
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore 构造 DocumentStore。
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// CreateDocument inserts a document with no sections.
func (s *DocumentStore) CreateDocument(ctx context.Context, req resume.CreateDocumentRequest) (resume.Document, error) {
	doc := Document{
		Name:        strings.TrimSpace(req.Name),
		JobTitle:    strings.TrimSpace(req.JobTitle),
		CompanyName: strings.TrimSpace(req.CompanyName),
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return resume.Document{}, fmt.Errorf("create document: %w", err)
	}
	return resume.Document{ID: int(doc.ID), Header: doc.header()}, nil
}

// GetDocument loads a document with every stored section. Sections never
// saved stay nil.
func (s *DocumentStore) GetDocument(ctx context.Context, id uint) (resume.Document, error) {
	var doc Document
	if err := s.db.WithContext(ctx).Preload("Sections").First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resume.Document{}, ErrDocumentNotFound
		}
		return resume.Document{}, fmt.Errorf("query document %d: %w", id, err)
	}

	out := resume.Document{ID: int(doc.ID), Header: doc.header()}
	for _, section := range doc.Sections {
		if err := decodeSection(&out, section); err != nil {
			return resume.Document{}, fmt.Errorf("decode %s section: %w", section.Kind, err)
		}
	}
	return out, nil
}

// UpdateHeader applies patch to the stored header and returns the result.
func (s *DocumentStore) UpdateHeader(ctx context.Context, id uint, patch resume.HeaderPatch) (resume.Header, error) {
	var header resume.Header
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return fmt.Errorf("query document %d: %w", id, err)
		}

		header = doc.header().Apply(patch)
		update := map[string]any{
			"name":         header.Name,
			"header_name":  header.HeaderName,
			"job_title":    header.JobTitle,
			"company_name": header.CompanyName,
			"meta_title":   header.MetaTitle,
			"header_role":  header.HeaderRole,
		}
		if err := tx.Model(&doc).Updates(update).Error; err != nil {
			return fmt.Errorf("update document %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return resume.Header{}, err
	}
	return header, nil
}

// SaveSection upserts the section of the given kind. encode receives the
// section row id and returns the content to store.
func (s *DocumentStore) SaveSection(ctx context.Context, documentID uint, kind resume.SectionKey, encode func(sectionID uint) ([]byte, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		if err := tx.Select("id").First(&doc, documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return fmt.Errorf("query document %d: %w", documentID, err)
		}

		var row Section
		err := tx.Where("document_id = ? AND kind = ?", documentID, string(kind)).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = Section{DocumentID: documentID, Kind: string(kind), Content: datatypes.JSON("{}")}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create %s section: %w", kind, err)
			}
		case err != nil:
			return fmt.Errorf("query %s section: %w", kind, err)
		}

		content, err := encode(row.ID)
		if err != nil {
			return fmt.Errorf("encode %s section: %w", kind, err)
		}
		if err := tx.Model(&row).Update("content", datatypes.JSON(content)).Error; err != nil {
			return fmt.Errorf("update %s section: %w", kind, err)
		}
		return tx.Model(&doc).Update("updated_at", time.Now()).Error
	})
}

// DeleteDocument removes the document and its sections.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("document_id = ?", id).Delete(&Section{}).Error; err != nil {
			return fmt.Errorf("delete sections of document %d: %w", id, err)
		}
		res := tx.Unscoped().Delete(&Document{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete document %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDocumentNotFound
		}
		return nil
	})
}

func (d Document) header() resume.Header {
	return resume.Header{
		Name:        d.Name,
		HeaderName:  d.HeaderName,
		JobTitle:    d.JobTitle,
		CompanyName: d.CompanyName,
		MetaTitle:   d.MetaTitle,
		HeaderRole:  d.HeaderRole,
	}
}

// decodeSection fills the document field matching the row kind. Unknown
// kinds are ignored.
func decodeSection(doc *resume.Document, row Section) error {
	switch resume.SectionKey(row.Kind) {
	case resume.SectionContact:
		return decodeInto(row.Content, &doc.Contact)
	case resume.SectionProfile:
		return decodeInto(row.Content, &doc.Profile)
	case resume.SectionSkills:
		return decodeInto(row.Content, &doc.Skills)
	case resume.SectionExperience:
		return decodeInto(row.Content, &doc.Experience)
	case resume.SectionProjects:
		return decodeInto(row.Content, &doc.Projects)
	case resume.SectionEducation:
		return decodeInto(row.Content, &doc.Education)
	case resume.SectionLanguages:
		return decodeInto(row.Content, &doc.Languages)
	default:
		return nil
	}
}

func decodeInto[S any](content datatypes.JSON, dst **S) error {
	var value S
	if err := json.Unmarshal(content, &value); err != nil {
		return err
	}
	*dst = &value
	return nil
}
