package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRecord is one append-only entry in the signing audit trail. Records
// are written once and never mutated.
type AuditRecord struct {
	TrackingID  string    `json:"trackingId"`
	Timestamp   time.Time `json:"timestamp"`
	DocumentID  string    `json:"documentId"`
	Action      string    `json:"action"` // UPLOADED, SIGNED, FINALIZED, REJECTED, DELETED
	Signer      string    `json:"signer,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	SourceAddr  string    `json:"sourceAddr,omitempty"`
}

// AuditLog appends records as JSON lines to a single log file. A nil
// *AuditLog is a valid no-op sink.
type AuditLog struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewAuditLog(path string, logger *zap.Logger) (*AuditLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}
	return &AuditLog{
		path:   path,
		logger: logger.With(zap.String("service", "audit_log")),
	}, nil
}

// Append writes one record. A zero TrackingID or Timestamp is filled in.
func (al *AuditLog) Append(rec AuditRecord) error {
	if al == nil {
		return nil
	}
	if rec.TrackingID == "" {
		rec.TrackingID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	f, err := os.OpenFile(al.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	al.logger.Info("audit event",
		zap.String("action", rec.Action),
		zap.String("document_id", rec.DocumentID),
		zap.String("tracking_id", rec.TrackingID))
	return nil
}
