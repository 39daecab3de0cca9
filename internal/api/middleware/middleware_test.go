package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forms-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	engine.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{"query": c.Request.URL.RawQuery, "body": string(body)})
	})
	return engine
}

func TestSanitizeBody(t *testing.T) {
	engine := echoEngine(Sanitize())

	req := httptest.NewRequest(http.MethodPost, "/echo?name=alice&$where=1", strings.NewReader(
		`{"email":{"$gt":""},"nested":[{"__proto__":{"admin":true},"ok":1}],"name":"bob"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Query string `json:"query"`
		Body  string `json:"body"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "name=alice", out.Query)
	assert.JSONEq(t, `{"email":{},"nested":[{"ok":1}],"name":"bob"}`, out.Body)
}

func TestSanitizeLeavesInvalidJSON(t *testing.T) {
	engine := echoEngine(Sanitize())

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `{not json`)
}

func TestRateLimitWithoutRedisPasses(t *testing.T) {
	rl := NewRateLimitMiddleware(nil)
	engine := echoEngine(rl.RateLimit(1, time.Minute), rl.RateLimitIP(1, time.Minute))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCORSOriginMatching(t *testing.T) {
	engine := echoEngine(CORS(config.CORSConfig{
		AllowedOrigins: []string{"https://forms.example.com"},
		AllowLocalhost: true,
	}))

	cases := map[string]string{
		"https://forms.example.com":          "https://forms.example.com",
		"http://localhost:3000":              "http://localhost:3000",
		"https://localhost.attacker.example": "",
		"https://evil-127.0.0.1.example":     "",
		"https://attacker.example":           "",
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, origin)
		assert.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}
