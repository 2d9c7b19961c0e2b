package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/dino-reserve/utils"
)

const cacheKeyPrefix = "dinoreserve:http"

// bodyCapture tees the response body so it can be stored after the handler
// finishes.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func cacheKey(c *gin.Context) string {
	sum := sha1.Sum([]byte(c.FullPath() + "?" + c.Request.URL.RawQuery + "#" + c.Request.URL.Path))
	return fmt.Sprintf("%s:%x", cacheKeyPrefix, sum[:])
}

// payload layout: [4 bytes status][2 bytes content-type length][content-type][body]
func encodeCached(status int, contentType string, body []byte) []byte {
	out := make([]byte, 6+len(contentType)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint16(out[4:6], uint16(len(contentType)))
	copy(out[6:], contentType)
	copy(out[6+len(contentType):], body)
	return out
}

func decodeCached(bs []byte) (int, string, []byte, bool) {
	if len(bs) < 6 {
		return 0, "", nil, false
	}
	status := int(binary.BigEndian.Uint32(bs[0:4]))
	n := int(binary.BigEndian.Uint16(bs[4:6]))
	if 6+n > len(bs) {
		return 0, "", nil, false
	}
	return status, string(bs[6 : 6+n]), bs[6+n:], true
}

// ResponseCache serves repeated GET requests from redis for ttl. A nil
// client turns it into a pass-through.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cacheKey(c)

		if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
			if status, contentType, body, ok := decodeCached(bs); ok {
				c.Header("X-Cache", "HIT")
				c.Data(status, contentType, body)
				c.Abort()
				return
			}
		} else if err != redis.Nil {
			utils.ErrorLogger.WithError(err).Warn("cache lookup failed")
		}

		w := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header("X-Cache", "MISS")
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		payload := encodeCached(w.Status(), w.Header().Get("Content-Type"), w.buf.Bytes())
		if err := rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
			utils.ErrorLogger.WithError(err).Warn("cache store failed")
		}
	}
}
