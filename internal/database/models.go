package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document 保存简历文档的头部字段。
type Document struct {
	gorm.Model
	Name        string    `gorm:"size:255"`
	HeaderName  string    `gorm:"size:255"`
	JobTitle    string    `gorm:"size:255"`
	CompanyName string    `gorm:"size:255"`
	MetaTitle   string    `gorm:"size:255"`
	HeaderRole  string    `gorm:"size:255"`
	Sections    []Section `gorm:"constraint:OnDelete:CASCADE"`
}

// Section 保存一个分区的规范化内容（含有序集合），每个文档每种分区至多一行。
type Section struct {
	gorm.Model
	DocumentID uint           `gorm:"uniqueIndex:idx_section_document_kind"`
	Kind       string         `gorm:"size:32;uniqueIndex:idx_section_document_kind"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
}
