package models

import (
	"time"
)

// SignatureField is a placeholder region on one page of a document reserved
// for a single signature. Position and size are in PDF user space units
// measured from the page's bottom-left corner.
//
// Once SignerID and SignedAt are set the field is immutable.
type SignatureField struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	DocumentID string     `gorm:"index;not null" json:"-"`
	Page       int        `gorm:"not null" json:"page"`
	X          float64    `gorm:"not null" json:"x"`
	Y          float64    `gorm:"not null" json:"y"`
	Width      float64    `gorm:"not null" json:"width"`
	Height     float64    `gorm:"not null" json:"height"`
	SignerID   string     `json:"signerId,omitempty"`
	SignedAt   *time.Time `json:"signedAt,omitempty"`
	Signature  []byte     `gorm:"type:bytea" json:"-"`
}

// Signed reports whether the field already carries a signature.
func (f *SignatureField) Signed() bool {
	return f.SignerID != "" || f.SignedAt != nil
}
