package response

import (
	"log/slog"
	"net/http"

	"forms-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the JSON body of every REST response.
type Envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Status: StatusSuccess, Data: data})
}

// List writes data along with the number of returned items.
func List(c *gin.Context, data any, results int) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Results: &results, Data: data})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: message})
}

// Fail aborts the request with a client error.
func Fail(c *gin.Context, code int, message string) {
	status := StatusFail
	if code >= http.StatusInternalServerError {
		status = StatusError
	}
	c.AbortWithStatusJSON(code, Envelope{Status: status, Message: message})
}

// Error maps err to a status code and a message that is safe to return.
func Error(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	if !apperror.IsExpected(err) {
		slog.Error("Unexpected error", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	Fail(c, apperror.HTTPStatus(kind), apperror.PublicMessage(err))
}
