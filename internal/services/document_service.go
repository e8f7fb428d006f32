package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/db/models"
	"github.com/manasa-ma/digital-signature-app/internal/pdf"
	"github.com/manasa-ma/digital-signature-app/internal/store"
	"github.com/manasa-ma/digital-signature-app/pkg/metrics"
)

var (
	ErrForbidden        = errors.New("not the document owner")
	ErrAlreadySigned    = errors.New("field has already been signed")
	ErrAlreadyFinalized = errors.New("document has already been finalized")
	ErrDocumentClosed   = errors.New("document is in a terminal state")
	ErrInvalidInput     = errors.New("invalid input")
)

// Default placement box when the caller leaves field dimensions empty.
const (
	DefaultFieldWidth  = 200.0
	DefaultFieldHeight = 50.0

	finalizeStampWidth  = 150.0
	finalizeStampHeight = 50.0
)

// Stamper is the slice of the stamping engine the lifecycle controller
// needs. Satisfied by *pdf.Engine.
type Stamper interface {
	Stamp(doc, image []byte, page int, x, y, width, height float64) ([]byte, error)
	AppendAuditPage(doc []byte, fields []pdf.AuditField) ([]byte, error)
	PageCount(doc []byte) (int, error)
}

// docLocks serializes mutations per document id. The in-memory map gives no
// ordering guarantee of its own, so every transition takes the document's
// lock before reading state.
type docLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newDocLocks() *docLocks {
	return &docLocks{m: make(map[string]*sync.Mutex)}
}

func (dl *docLocks) lock(id string) func() {
	dl.mu.Lock()
	l, ok := dl.m[id]
	if !ok {
		l = &sync.Mutex{}
		dl.m[id] = l
	}
	dl.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// forget drops the lock entry for a document that no longer exists. A caller
// racing the delete re-creates the entry, finds the document gone, and fails
// with NotFound.
func (dl *docLocks) forget(id string) {
	dl.mu.Lock()
	delete(dl.m, id)
	dl.mu.Unlock()
}

// DocumentService is the lifecycle controller: it owns every transition of a
// document and its signature fields, and is the only writer of document
// state. Stamping runs on bytes by value; storage is only touched here.
type DocumentService struct {
	docs    store.DocumentStore
	blobs   store.BlobStore
	stamper Stamper
	audit   *AuditLog
	locks   *docLocks
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewDocumentService(
	docs store.DocumentStore,
	blobs store.BlobStore,
	stamper Stamper,
	audit *AuditLog,
	logger *zap.Logger,
	collector *metrics.Collector,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		blobs:   blobs,
		stamper: stamper,
		audit:   audit,
		locks:   newDocLocks(),
		logger:  logger.With(zap.String("service", "document_service")),
		metrics: collector,
	}
}

// CreateDocument stores the uploaded PDF and its metadata in PENDING state.
func (ds *DocumentService) CreateDocument(ctx context.Context, ownerID, originalName string, content []byte) (*models.Document, error) {
	start := time.Now()

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}
	if _, err := ds.stamper.PageCount(content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         trimPDFExt(originalName),
		OriginalName: originalName,
		ContentRef:   uuid.New().String(),
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		Fields:       []models.SignatureField{},
	}

	if err := ds.blobs.Put(ctx, doc.ContentRef, content); err != nil {
		return nil, fmt.Errorf("store document content: %w", err)
	}
	if err := ds.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document metadata: %w", err)
	}

	if err := ds.audit.Append(AuditRecord{DocumentID: doc.ID, Action: "UPLOADED", Signer: ownerID}); err != nil {
		ds.logger.Warn("audit append failed", zap.Error(err))
	}

	ds.metrics.IncrementCounter("documents_uploaded", nil)
	ds.metrics.ObserveSize("document_size", float64(len(content)))
	ds.metrics.ObserveLatency("document_upload", time.Since(start))

	ds.logger.Info("document uploaded",
		zap.String("doc_id", doc.ID),
		zap.String("owner_id", ownerID),
		zap.Int("bytes", len(content)))
	return doc, nil
}

// AddField appends a signature placeholder to a pending document.
func (ds *DocumentService) AddField(ctx context.Context, docID, ownerID string, page int, x, y, width, height float64) (*models.SignatureField, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: negative page index", ErrInvalidInput)
	}
	if width <= 0 {
		width = DefaultFieldWidth
	}
	if height <= 0 {
		height = DefaultFieldHeight
	}

	unlock := ds.locks.lock(docID)
	defer unlock()

	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	if doc.Status != models.StatusPending {
		return nil, ErrDocumentClosed
	}

	field := models.SignatureField{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Page:       page,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
	}
	doc.Fields = append(doc.Fields, field)
	// The new field is unsigned, so the document is no longer complete.
	doc.SignedAt = nil
	doc.UpdatedAt = time.Now()

	if err := ds.docs.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return &field, nil
}

// SignField writes the signature image into the field's region of the PDF
// and marks the field signed. A field signs exactly once; when every field
// on the document is signed the document's SignedAt is set.
func (ds *DocumentService) SignField(ctx context.Context, docID, fieldID, signerID string, signature []byte) (*models.SignatureField, error) {
	start := time.Now()

	unlock := ds.locks.lock(docID)
	defer unlock()

	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return nil, ErrDocumentClosed
	}
	field := doc.Field(fieldID)
	if field == nil {
		return nil, store.ErrNotFound
	}
	if field.Signed() {
		return nil, ErrAlreadySigned
	}

	content, err := ds.blobs.Get(ctx, doc.ContentRef)
	if err != nil {
		return nil, fmt.Errorf("load document content: %w", err)
	}

	stamped, err := ds.stamper.Stamp(content, signature, field.Page, field.X, field.Y, field.Width, field.Height)
	if err != nil {
		// Engine failure leaves field and document untouched.
		return nil, err
	}

	if err := ds.blobs.Put(ctx, doc.ContentRef, stamped); err != nil {
		return nil, fmt.Errorf("store signed content: %w", err)
	}

	now := time.Now()
	field.SignerID = signerID
	field.SignedAt = &now
	field.Signature = signature
	doc.UpdatedAt = now
	if doc.Complete() {
		doc.SignedAt = &now
	}

	if err := ds.docs.Update(ctx, doc); err != nil {
		// Put the pre-stamp bytes back so content and metadata stay in step.
		if restoreErr := ds.blobs.Put(ctx, doc.ContentRef, content); restoreErr != nil {
			ds.logger.Error("content restore failed",
				zap.String("doc_id", doc.ID),
				zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	if err := ds.audit.Append(AuditRecord{
		DocumentID:  doc.ID,
		Action:      "SIGNED",
		Signer:      signerID,
		Fingerprint: pdf.Fingerprint(content, signature),
	}); err != nil {
		ds.logger.Warn("audit append failed", zap.Error(err))
	}

	ds.metrics.IncrementCounter("fields_signed", nil)
	ds.metrics.ObserveLatency("field_sign", time.Since(start))

	ds.logger.Info("field signed",
		zap.String("doc_id", doc.ID),
		zap.String("field_id", fieldID),
		zap.String("signer_id", signerID),
		zap.Bool("document_complete", doc.SignedAt != nil))
	return field, nil
}

// Finalize commits a one-shot signature placement, appends the audit
// certificate page and moves the document into its terminal SIGNED state.
// Coordinates are bottom-up document space. On any engine failure the
// document stays PENDING.
func (ds *DocumentService) Finalize(ctx context.Context, docID, ownerID, signer string, signature []byte, page int, x, y float64, sourceAddr string) (*models.Document, error) {
	start := time.Now()

	unlock := ds.locks.lock(docID)
	defer unlock()

	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	switch doc.Status {
	case models.StatusSigned:
		return nil, ErrAlreadyFinalized
	case models.StatusRejected:
		return nil, ErrDocumentClosed
	}

	content, err := ds.blobs.Get(ctx, doc.ContentRef)
	if err != nil {
		return nil, fmt.Errorf("load document content: %w", err)
	}

	fingerprint := pdf.Fingerprint(content, signature)
	trackingID := uuid.New().String()
	now := time.Now()

	stamped, err := ds.stamper.Stamp(content, signature, page, x, y, finalizeStampWidth, finalizeStampHeight)
	if err != nil {
		return nil, err
	}

	certified, err := ds.stamper.AppendAuditPage(stamped, []pdf.AuditField{
		{Label: "Document", Value: doc.OriginalName},
		{Label: "Signed by", Value: signer},
		{Label: "Signed at", Value: now.UTC().Format(time.RFC3339)},
		{Label: "Tracking ID", Value: trackingID},
		{Label: "Fingerprint", Value: fingerprint},
	})
	if err != nil {
		return nil, err
	}

	if err := ds.blobs.Put(ctx, doc.ContentRef, certified); err != nil {
		return nil, fmt.Errorf("store finalized content: %w", err)
	}

	doc.Status = models.StatusSigned
	doc.SignedAt = &now
	doc.UpdatedAt = now
	if err := ds.docs.Update(ctx, doc); err != nil {
		if restoreErr := ds.blobs.Put(ctx, doc.ContentRef, content); restoreErr != nil {
			ds.logger.Error("content restore failed",
				zap.String("doc_id", doc.ID),
				zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	if err := ds.audit.Append(AuditRecord{
		TrackingID:  trackingID,
		DocumentID:  doc.ID,
		Action:      "FINALIZED",
		Signer:      signer,
		Fingerprint: fingerprint,
		SourceAddr:  sourceAddr,
	}); err != nil {
		ds.logger.Warn("audit append failed", zap.Error(err))
	}

	ds.metrics.IncrementCounter("documents_finalized", nil)
	ds.metrics.ObserveLatency("document_finalize", time.Since(start))

	ds.logger.Info("document finalized",
		zap.String("doc_id", doc.ID),
		zap.String("tracking_id", trackingID),
		zap.String("signer", signer))
	return doc, nil
}

// Reject moves a pending document into its terminal REJECTED state. The
// stamping engine is never invoked.
func (ds *DocumentService) Reject(ctx context.Context, docID, ownerID string) (*models.Document, error) {
	unlock := ds.locks.lock(docID)
	defer unlock()

	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	if doc.Status != models.StatusPending {
		return nil, ErrDocumentClosed
	}

	doc.Status = models.StatusRejected
	doc.UpdatedAt = time.Now()
	if err := ds.docs.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	if err := ds.audit.Append(AuditRecord{DocumentID: doc.ID, Action: "REJECTED", Signer: ownerID}); err != nil {
		ds.logger.Warn("audit append failed", zap.Error(err))
	}

	ds.metrics.IncrementCounter("documents_rejected", nil)

	ds.logger.Info("document rejected", zap.String("doc_id", doc.ID))
	return doc, nil
}

// GetDocument returns the document and its current PDF bytes.
func (ds *DocumentService) GetDocument(ctx context.Context, docID, ownerID string) (*models.Document, []byte, error) {
	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, nil, ErrForbidden
	}
	content, err := ds.blobs.Get(ctx, doc.ContentRef)
	if err != nil {
		return nil, nil, fmt.Errorf("load document content: %w", err)
	}
	return doc, content, nil
}

// ListForOwner returns summaries of all documents owned by ownerID in
// insertion order.
func (ds *DocumentService) ListForOwner(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	docs, err := ds.docs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.DocumentSummary, 0, len(docs))
	for i := range docs {
		summaries = append(summaries, docs[i].Summary())
	}
	return summaries, nil
}

// DeleteDocument removes the metadata and the stored bytes. Owner only.
func (ds *DocumentService) DeleteDocument(ctx context.Context, docID, ownerID string) error {
	unlock := ds.locks.lock(docID)
	defer unlock()

	doc, err := ds.docs.Get(ctx, docID)
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := ds.blobs.Delete(ctx, doc.ContentRef); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete document content: %w", err)
	}
	if err := ds.docs.Delete(ctx, docID); err != nil {
		return err
	}
	ds.locks.forget(docID)

	if err := ds.audit.Append(AuditRecord{DocumentID: docID, Action: "DELETED", Signer: ownerID}); err != nil {
		ds.logger.Warn("audit append failed", zap.Error(err))
	}

	ds.logger.Info("document deleted", zap.String("doc_id", docID))
	return nil
}

func trimPDFExt(name string) string {
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".pdf") {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
