package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/pdf"
	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/store"
)

// respondError maps a service or engine error to its HTTP status and a short
// client-safe message. Anything unrecognized is a 500 with no detail leaked.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized for this document"})
	case errors.Is(err, services.ErrAlreadySigned):
		c.JSON(http.StatusBadRequest, gin.H{"message": "This field has already been signed"})
	case errors.Is(err, services.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"message": "Document has already been finalized"})
	case errors.Is(err, services.ErrDocumentClosed):
		c.JSON(http.StatusConflict, gin.H{"message": "Document is no longer pending"})
	case errors.Is(err, pdf.ErrPageOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Page index out of range"})
	case errors.Is(err, pdf.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Signature image is not a valid PNG"})
	case errors.Is(err, pdf.ErrCorruptInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "File is not a valid PDF"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
