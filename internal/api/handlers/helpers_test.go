package handlers

import (
	"net/http/httptest"
	"testing"

	"forms-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestListOptions(t *testing.T) {
	opts := listOptions(contextFor("/?page=3&limit=20&sort=-likes,title"))
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, []models.SortField{{Field: "likes", Desc: true}, {Field: "title"}}, opts.Sort)

	opts = listOptions(contextFor("/?page=-1&limit=5000"))
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, models.MaxLimit, opts.Limit)
}

func TestQueryLimit(t *testing.T) {
	assert.Equal(t, 10, queryLimit(contextFor("/"), 10))
	assert.Equal(t, 10, queryLimit(contextFor("/?limit=abc"), 10))
	assert.Equal(t, 3, queryLimit(contextFor("/?limit=3"), 10))
	assert.Equal(t, models.MaxLimit, queryLimit(contextFor("/?limit=1000"), 10))
}
