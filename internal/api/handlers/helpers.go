package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"forms-service/internal/models"
	"forms-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindJSON binds the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Fail(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid input data"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "eqfield":
			msgs = append(msgs, fmt.Sprintf("%s must match %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return "Invalid input data. " + strings.Join(msgs, ". ")
}

// listOptions parses page, limit and sort ("-likes,title") from the query string.
func listOptions(c *gin.Context) models.ListOptions {
	var opts models.ListOptions
	opts.Page, _ = strconv.Atoi(c.Query("page"))
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	for _, field := range strings.Split(c.Query("sort"), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		desc := strings.HasPrefix(field, "-")
		opts.Sort = append(opts.Sort, models.SortField{Field: strings.TrimPrefix(field, "-"), Desc: desc})
	}
	return opts.Normalize()
}

// queryLimit reads ?limit, falling back to def and capping at models.MaxLimit.
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 1 {
		return def
	}
	return min(n, models.MaxLimit)
}
