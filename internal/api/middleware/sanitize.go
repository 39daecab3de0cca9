package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// forbiddenKeyParts mark keys that could smuggle operators or prototype keys into a query.
var forbiddenKeyParts = []string{"__proto__", "$"}

func forbiddenKey(key string) bool {
	for _, part := range forbiddenKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func stripKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if forbiddenKey(k) {
				delete(val, k)
				continue
			}
			val[k] = stripKeys(inner)
		}
		return val
	case []any:
		for i := range val {
			val[i] = stripKeys(val[i])
		}
		return val
	default:
		return v
	}
}

// Sanitize drops operator-like keys from JSON bodies and query strings.
func Sanitize() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		changed := false
		for k := range query {
			if forbiddenKey(k) {
				query.Del(k)
				changed = true
			}
		}
		if changed {
			c.Request.URL.RawQuery = query.Encode()
		}

		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			raw, err := io.ReadAll(c.Request.Body)
			c.Request.Body.Close()
			if err == nil && len(raw) > 0 {
				decoder := json.NewDecoder(bytes.NewReader(raw))
				decoder.UseNumber()
				var body any
				if decoder.Decode(&body) == nil {
					if cleaned, err := json.Marshal(stripKeys(body)); err == nil {
						raw = cleaned
					}
				}
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			c.Request.ContentLength = int64(len(raw))
		}

		c.Next()
	}
}
