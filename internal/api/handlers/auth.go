package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manasa-ma/digital-signature-app/internal/db/models"
	"github.com/manasa-ma/digital-signature-app/internal/services"
	"github.com/manasa-ma/digital-signature-app/internal/store"
	"github.com/manasa-ma/digital-signature-app/internal/utils"
)

type AuthHandler struct {
	users  store.UserStore
	tokens *services.TokenService
	logger *zap.Logger
}

func NewAuthHandler(users store.UserStore, tokens *services.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: logger.With(zap.String("handler", "auth")),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email, password, and name are required"})
		return
	}

	hash, err := utils.EncryptPassword(req.Password)
	if err != nil {
		ah.logger.Error("password hash failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := ah.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, ah.logger, err)
		return
	}

	token, err := ah.tokens.Issue(user.ID, user.Email)
	if err != nil {
		ah.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ah.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
		"token":   token,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, err := ah.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondError(c, ah.logger, err)
		return
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		ah.logger.Warn("invalid password",
			zap.String("email", req.Email),
			zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := ah.tokens.Issue(user.ID, user.Email)
	if err != nil {
		ah.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
		"token":   token,
	})
}

func (ah *AuthHandler) Profile(c *gin.Context) {
	user, err := ah.users.GetByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, ah.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}
