package store

import (
	"context"
	"sync"

	"github.com/manasa-ma/digital-signature-app/internal/db/models"
)

// MemoryDocumentStore keeps documents in a mutex-guarded map. It is the
// default backend and the one used throughout the tests.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]models.Document
	// insertion order, so ListByOwner is stable across calls
	order []string
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs: make(map[string]models.Document),
	}
}

func cloneDocument(d models.Document) models.Document {
	fields := make([]models.SignatureField, len(d.Fields))
	copy(fields, d.Fields)
	for i := range fields {
		if fields[i].SignedAt != nil {
			t := *fields[i].SignedAt
			fields[i].SignedAt = &t
		}
		if fields[i].Signature != nil {
			sig := make([]byte, len(fields[i].Signature))
			copy(sig, fields[i].Signature)
			fields[i].Signature = sig
		}
	}
	d.Fields = fields
	if d.SignedAt != nil {
		t := *d.SignedAt
		d.SignedAt = &t
	}
	return d
}

func (s *MemoryDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = cloneDocument(*doc)
	s.order = append(s.order, doc.ID)
	return nil
}

func (s *MemoryDocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneDocument(doc)
	return &out, nil
}

func (s *MemoryDocumentStore) Update(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return ErrNotFound
	}
	s.docs[doc.ID] = cloneDocument(*doc)
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	for i, docID := range s.order {
		if docID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryDocumentStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Document
	for _, id := range s.order {
		doc := s.docs[id]
		if doc.OwnerID == ownerID {
			out = append(out, cloneDocument(doc))
		}
	}
	return out, nil
}

// MemoryUserStore keeps users in mutex-guarded maps keyed by id and email.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.byID[id]
	return &user, nil
}

// MemoryBlobStore keeps document bytes in a mutex-guarded map.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, ref string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = buf
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, ref)
	return nil
}
