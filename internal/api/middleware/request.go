package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type loginAttemptInfo struct {
	Count       int
	LastAttempt time.Time
}

// loginAttemptTracker counts login posts per client address so repeated
// failures show up in the logs. Entries older than 30s are dropped.
type loginAttemptTracker struct {
	mu           sync.Mutex
	attempts     map[string]*loginAttemptInfo
	cleanupEvery time.Duration
}

func newLoginAttemptTracker() *loginAttemptTracker {
	tracker := &loginAttemptTracker{
		attempts:     make(map[string]*loginAttemptInfo),
		cleanupEvery: 5 * time.Minute,
	}
	go tracker.startCleanup()
	return tracker
}

func (t *loginAttemptTracker) startCleanup() {
	ticker := time.NewTicker(t.cleanupEvery)
	defer ticker.Stop()
	for range ticker.C {
		t.cleanOldEntries()
	}
}

func (t *loginAttemptTracker) cleanOldEntries() {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiry := time.Now().Add(-30 * time.Second)
	for ip, info := range t.attempts {
		if info.LastAttempt.Before(expiry) {
			delete(t.attempts, ip)
		}
	}
}

// record returns the attempt count for ip including this one.
func (t *loginAttemptTracker) record(ip string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.attempts[ip]
	if !ok {
		info = &loginAttemptInfo{}
		t.attempts[ip] = info
	}
	info.Count++
	info.LastAttempt = time.Now()
	return info.Count
}

type RequestMiddleware struct {
	logger         *zap.Logger
	attemptTracker *loginAttemptTracker
}

func NewRequestMiddleware(logger *zap.Logger) *RequestMiddleware {
	return &RequestMiddleware{
		logger:         logger,
		attemptTracker: newLoginAttemptTracker(),
	}
}

// ProcessRequest assigns a request id and logs start/completion.
func (rm *RequestMiddleware) ProcessRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		rm.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.Int("size", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()))
	}
}

// LoginAttemptMiddleware flags bursts of login posts from one address.
func (rm *RequestMiddleware) LoginAttemptMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" && c.FullPath() == "/auth/login" {
			clientIP := c.ClientIP()
			if count := rm.attemptTracker.record(clientIP); count > 5 {
				rm.logger.Warn("Repeated login attempts",
					zap.String("client_ip", clientIP),
					zap.Int("attempts", count))
			}
		}
		c.Next()
	}
}

// RecoverPanic turns a handler panic into a 500 without crashing the
// process.
func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				rm.logger.Error("Panic recovered",
					zap.String("request_id", c.GetString("requestID")),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(500, gin.H{
					"message": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
