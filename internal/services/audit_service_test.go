package services

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuditLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	al, err := NewAuditLog(path, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, al.Append(AuditRecord{DocumentID: "d1", Action: "UPLOADED", Signer: "alice"}))
	require.NoError(t, al.Append(AuditRecord{DocumentID: "d1", Action: "FINALIZED", Signer: "alice", Fingerprint: "abc123"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []AuditRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec AuditRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "UPLOADED", records[0].Action)
	assert.Equal(t, "FINALIZED", records[1].Action)
	assert.Equal(t, "abc123", records[1].Fingerprint)

	// tracking id and timestamp are filled in on append
	for _, rec := range records {
		assert.NotEmpty(t, rec.TrackingID)
		assert.False(t, rec.Timestamp.IsZero())
	}
}

func TestAuditLogNilIsNoop(t *testing.T) {
	var al *AuditLog
	assert.NoError(t, al.Append(AuditRecord{DocumentID: "d1", Action: "UPLOADED"}))
}
