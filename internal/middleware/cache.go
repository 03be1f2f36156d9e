package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	requestStartKey = "request_started_at"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta gives each request an empty meta map and remembers when it arrived,
// so report handlers can expose cache_hit and processing_time_ms alongside their data.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the report came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	meta := ensureMeta(c)
	meta[cacheHitKey] = hit
}

// ReportMeta stamps the cache outcome and elapsed time onto the request meta and returns it.
// Without WithResponseMeta the elapsed time is reported as zero.
func ReportMeta(c *gin.Context, hit bool) map[string]interface{} {
	meta := ensureMeta(c)
	meta[cacheHitKey] = hit
	var elapsed time.Duration
	if started, ok := c.Get(requestStartKey); ok {
		if at, ok := started.(time.Time); ok {
			elapsed = time.Since(at)
		}
	}
	meta["processing_time_ms"] = elapsed.Milliseconds()
	return meta
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if raw, ok := c.Get(responseMetaKey); ok {
		meta, _ := raw.(map[string]interface{})
		return meta
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
