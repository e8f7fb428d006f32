package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/pdf"
	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/store"
	"github.com/manasa-ma/digital-signature-app/pkg/metrics"
)

type stubStamper struct{}

func (stubStamper) Stamp(doc, image []byte, page int, x, y, width, height float64) ([]byte, error) {
	return append(append([]byte{}, doc...), []byte("+stamp")...), nil
}

func (stubStamper) AppendAuditPage(doc []byte, fields []pdf.AuditField) ([]byte, error) {
	return append(append([]byte{}, doc...), []byte("+cert")...), nil
}

func (stubStamper) PageCount(doc []byte) (int, error) { return 1, nil }

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	collector := metrics.NewCollector()
	tokens := services.NewTokenService("test-secret", time.Hour, logger)
	docs := services.NewDocumentService(
		store.NewMemoryDocumentStore(),
		store.NewMemoryBlobStore(),
		stubStamper{},
		nil,
		logger,
		collector,
	)
	router := NewRouter(logger, collector, tokens, docs, store.NewMemoryUserStore(), 10<<20)
	router.SetupRoutes()
	return router.GetEngine()
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, engine *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"name":     "Test User",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func uploadPDF(t *testing.T, engine *gin.Engine, token string, content []byte) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contract.pdf")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doc, _ := decodeBody(t, w)["document"].(map[string]any)
	id, _ := doc["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func signaturePayload() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake-png"))
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(t)
	w := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decodeBody(t, w)["status"])
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", decodeBody(t, w)["message"])

	w = doJSON(t, engine, http.MethodGet, "/documents", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, w)["message"])
}

func TestExpiredToken(t *testing.T) {
	logger := zap.NewNop()
	collector := metrics.NewCollector()
	expired := services.NewTokenService("test-secret", -time.Hour, logger)
	docs := services.NewDocumentService(
		store.NewMemoryDocumentStore(), store.NewMemoryBlobStore(), stubStamper{}, nil, logger, collector)
	router := NewRouter(logger, collector, expired, docs, store.NewMemoryUserStore(), 10<<20)
	router.SetupRoutes()
	engine := router.GetEngine()

	token, err := expired.Issue("u1", "u1@example.com")
	require.NoError(t, err)

	w := doJSON(t, engine, http.MethodGet, "/documents", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Token expired", decodeBody(t, w)["message"])
}

func TestRegisterLoginProfile(t *testing.T) {
	engine := newTestEngine(t)
	registerUser(t, engine, "alice@example.com")

	// duplicate registration
	w := doJSON(t, engine, http.MethodPost, "/auth/register", "", gin.H{
		"email": "alice@example.com", "name": "Alice", "password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong password
	w = doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, w)["message"])

	w = doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, engine, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user, _ := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	engine := newTestEngine(t)
	token := registerUser(t, engine, "alice@example.com")

	docID := uploadPDF(t, engine, token, []byte("%PDF-1.4 test"))

	w := doJSON(t, engine, http.MethodGet, "/documents", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, _ := decodeBody(t, w)["documents"].([]any)
	require.Len(t, list, 1)

	w = doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/fields", token, gin.H{
		"page": 0, "x": 50.0, "y": 700.0, "width": 150.0, "height": 50.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	field, _ := decodeBody(t, w)["field"].(map[string]any)
	fieldID, _ := field["id"].(string)
	require.NotEmpty(t, fieldID)

	w = doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/sign", token, gin.H{
		"fieldId": fieldID, "signatureData": signaturePayload(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// signing the same field again is a client error
	w = doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/sign", token, gin.H{
		"fieldId": fieldID, "signatureData": signaturePayload(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/documents/"+docID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pdfB64, _ := decodeBody(t, w)["pdf"].(string)
	content, err := base64.StdEncoding.DecodeString(pdfB64)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test+stamp"), content)

	req := httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	dw := httptest.NewRecorder()
	engine.ServeHTTP(dw, req)
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, "application/pdf", dw.Header().Get("Content-Type"))
	assert.Contains(t, dw.Header().Get("Content-Disposition"), "contract.pdf")

	w = doJSON(t, engine, http.MethodDelete, "/documents/"+docID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/documents/"+docID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFinalizeOverHTTP(t *testing.T) {
	engine := newTestEngine(t)
	token := registerUser(t, engine, "alice@example.com")
	docID := uploadPDF(t, engine, token, []byte("%PDF-1.4 test"))

	w := doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/finalize", token, gin.H{
		"signatureData": signaturePayload(), "page": 0, "x": 430.0, "y": 80.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc, _ := decodeBody(t, w)["document"].(map[string]any)
	assert.Equal(t, "SIGNED", doc["status"])

	// finalizing twice conflicts
	w = doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/finalize", token, gin.H{
		"signatureData": signaturePayload(), "page": 0, "x": 430.0, "y": 80.0,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// and so does rejecting a finalized document
	w = doJSON(t, engine, http.MethodPost, "/documents/"+docID+"/reject", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	engine := newTestEngine(t)
	alice := registerUser(t, engine, "alice@example.com")
	bob := registerUser(t, engine, "bob@example.com")

	docID := uploadPDF(t, engine, alice, []byte("%PDF-1.4 test"))

	w := doJSON(t, engine, http.MethodGet, "/documents/"+docID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/documents/"+docID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/documents", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, _ := decodeBody(t, w)["documents"].([]any)
	assert.Empty(t, list)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	engine := newTestEngine(t)
	token := registerUser(t, engine, "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
