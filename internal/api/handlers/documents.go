package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	maxUploadSize   int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *services.DocumentService, maxUploadSize int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadSize:   maxUploadSize,
		logger:          logger.With(zap.String("handler", "document")),
	}
}

type addFieldRequest struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type signRequest struct {
	FieldID       string `json:"fieldId"`
	SignatureData string `json:"signatureData"`
}

type finalizeRequest struct {
	SignatureData string  `json:"signatureData"`
	Page          int     `json:"page"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	if header.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File exceeds the maximum upload size"})
		return
	}
	if !strings.EqualFold(header.Header.Get("Content-Type"), "application/pdf") &&
		!strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only PDF files are allowed"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	if int64(len(content)) > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "File exceeds the maximum upload size"})
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), c.GetString("userID"), header.Filename, content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	summaries, err := h.documentService.ListForOwner(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, content, err := h.documentService.GetDocument(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"pdf":      base64.StdEncoding.EncodeToString(content),
	})
}

func (h *DocumentHandler) AddField(c *gin.Context) {
	var req addFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}

	field, err := h.documentService.AddField(c.Request.Context(), c.Param("id"), c.GetString("userID"),
		req.Page, req.X, req.Y, req.Width, req.Height)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signature field added",
		"field":   field,
	})
}

func (h *DocumentHandler) Sign(c *gin.Context) {
	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}

	signature, err := utils.DecodeSignatureData(req.SignatureData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid signature payload"})
		return
	}

	field, err := h.documentService.SignField(c.Request.Context(), c.Param("id"), req.FieldID,
		c.GetString("userID"), signature)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Document signed successfully",
		"field":   field,
	})
}

func (h *DocumentHandler) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}

	signature, err := utils.DecodeSignatureData(req.SignatureData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid signature payload"})
		return
	}

	signer := c.GetString("email")
	if signer == "" {
		signer = c.GetString("userID")
	}

	doc, err := h.documentService.Finalize(c.Request.Context(), c.Param("id"), c.GetString("userID"),
		signer, signature, req.Page, req.X, req.Y, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Document finalized successfully",
		"document": doc,
	})
}

func (h *DocumentHandler) Reject(c *gin.Context) {
	doc, err := h.documentService.Reject(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Document rejected",
		"document": doc,
	})
}

func (h *DocumentHandler) Download(c *gin.Context) {
	doc, content, err := h.documentService.GetDocument(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.OriginalName+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.DeleteDocument(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
