package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/domain/entity"
	"github.com/sangkips/clinic-api/internal/domain/repository"
	"github.com/sangkips/clinic-api/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger zerolog.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST, PUT or PATCH repeats an
// Idempotency-Key. Requests without the header pass through.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return idempotency(config, false)
}

// IdempotencyRequired is the stricter version that rejects POSTs without a key
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return idempotency(config, true)
}

func idempotency(config IdempotencyConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if required && method == http.MethodPost {
				response.BadRequest(c, IdempotencyKeyHeader+" header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		userIDValue, _ := c.Get("user_id")
		userID, ok := userIDValue.(uuid.UUID)
		if !ok || userID == uuid.Nil {
			if required {
				response.Unauthorized(c, "User not authenticated")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		requestHash := hex.EncodeToString(sum[:])

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID)
		if err != nil {
			config.Logger.Error().Err(err).Str("request_id", RequestID(c)).Msg("idempotency lookup failed")
			if required {
				response.InternalServerError(c, "Failed to check idempotency key")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if existing != nil && existing.ExpiresAt.After(time.Now()) {
			endpoint := method + " " + c.FullPath()
			if existing.Endpoint != endpoint || (existing.RequestHash != "" && existing.RequestHash != requestHash) {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, IdempotencyKeyHeader+" was already used for a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		// Server errors are not stored so the client can retry
		if status >= http.StatusInternalServerError {
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          key,
			UserID:       userID,
			Endpoint:     method + " " + c.FullPath(),
			RequestHash:  requestHash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if tenantID := GetTenantID(c); tenantID != uuid.Nil {
			ikey.TenantID = &tenantID
		}

		if err := config.Repo.Save(c.Request.Context(), ikey); err != nil {
			config.Logger.Warn().Err(err).Str("request_id", RequestID(c)).Msg("failed to store idempotency key")
		}
	}
}
