package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/manasa-ma/digital-signature-app/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentStore persists documents and their fields in the database.
type GormDocumentStore struct {
	db *gorm.DB
}

func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

func (s *GormDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *GormDocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).Preload("Fields").First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &doc, nil
}

func (s *GormDocumentStore) Update(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{FullSaveAssociations: true}).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Save(doc)
		if res.Error != nil {
			return fmt.Errorf("update document: %w", res.Error)
		}
		return nil
	})
}

func (s *GormDocumentStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.SignatureField{}).Error; err != nil {
			return fmt.Errorf("delete fields: %w", err)
		}
		res := tx.Delete(&models.Document{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormDocumentStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Preload("Fields").
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GormUserStore persists users in the database.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	var existing models.User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", user.Email).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
