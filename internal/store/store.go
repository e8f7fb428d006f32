// Package store owns all persistence for the signing service: document and
// user metadata plus the raw PDF bytes. Nothing outside this package touches
// the underlying storage; the stamping engine receives and returns bytes by
// value.
package store

import (
	"context"
	"errors"

	"github.com/manasa-ma/digital-signature-app/internal/db/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// DocumentStore persists document metadata including signature fields.
//
// Get returns a copy the caller may mutate freely; changes become visible
// only through Update. Update replaces the stored document and its fields
// wholesale.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
}

// UserStore persists registered users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BlobStore holds raw document content keyed by an opaque reference.
// Put and Get copy; callers never share a buffer with the store.
type BlobStore interface {
	Put(ctx context.Context, ref string, data []byte) error
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}
