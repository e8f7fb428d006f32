package models

import (
	"time"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "PENDING"
	StatusSigned   DocumentStatus = "SIGNED"
	StatusRejected DocumentStatus = "REJECTED"
)

// Terminal reports whether no further lifecycle transition may leave s.
func (s DocumentStatus) Terminal() bool {
	return s == StatusSigned || s == StatusRejected
}

// Document is the signing workflow metadata for one uploaded PDF. The PDF
// bytes themselves live in the blob store under ContentRef and are never
// duplicated here.
type Document struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	OwnerID      string         `gorm:"index;not null" json:"ownerId"`
	Name         string         `gorm:"not null" json:"name"`
	OriginalName string         `gorm:"not null" json:"originalName"`
	ContentRef   string         `gorm:"not null" json:"-"`
	Status       DocumentStatus `gorm:"not null;default:'PENDING'" json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	SignedAt     *time.Time     `json:"signedAt,omitempty"`

	Fields []SignatureField `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"signatureFields"`
}

// Complete reports whether every signature field on the document has been
// signed. A document with no fields is not complete.
func (d *Document) Complete() bool {
	if len(d.Fields) == 0 {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i].SignedAt == nil {
			return false
		}
	}
	return true
}

// Field returns the field with the given id, or nil.
func (d *Document) Field(fieldID string) *SignatureField {
	for i := range d.Fields {
		if d.Fields[i].ID == fieldID {
			return &d.Fields[i]
		}
	}
	return nil
}

// DocumentSummary is the list-view projection of a Document.
type DocumentSummary struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	OriginalName string         `json:"originalName"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	SignedAt     *time.Time     `json:"signedAt,omitempty"`
	FieldCount   int            `json:"signatureFieldsCount"`
	SignedFields int            `json:"signedFieldsCount"`
}

// Summary projects d into its list-view shape.
func (d *Document) Summary() DocumentSummary {
	signed := 0
	for i := range d.Fields {
		if d.Fields[i].SignedAt != nil {
			signed++
		}
	}
	return DocumentSummary{
		ID:           d.ID,
		Name:         d.Name,
		OriginalName: d.OriginalName,
		Status:       d.Status,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		SignedAt:     d.SignedAt,
		FieldCount:   len(d.Fields),
		SignedFields: signed,
	}
}
