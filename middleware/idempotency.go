package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key from the same principal. Cache failures never fail the request.
func Idempotency(cache ResponseCache, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		p := CurrentPrincipal(c)
		if key == "" || p == nil {
			c.Next()
			return
		}
		cacheKey := "idempotency:" + p.ID + ":" + key

		raw, found, err := cache.Get(c.Request.Context(), cacheKey)
		if err != nil {
			log.Warn("idempotency cache get failed", zap.Error(err))
		}
		if found {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusCreated || !json.Valid(rec.body.Bytes()) {
			return
		}
		value, err := json.Marshal(cachedResponse{Status: rec.Status(), Body: rec.body.Bytes()})
		if err == nil {
			err = cache.Set(c.Request.Context(), cacheKey, value, ttl)
		}
		if err != nil {
			log.Warn("idempotency cache set failed", zap.Error(err))
		}
	}
}
