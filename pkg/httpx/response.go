package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

func List(c *gin.Context, data any, page Page, total int64) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page.Page, Limit: page.Limit, Total: total},
	})
}

// Fail writes the error envelope. Internal errors are logged with the request path and
// reported to the client without their message.
func Fail(c *gin.Context, err error) {
	status, code, msg := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg, Error: &ErrorBody{Code: code}})
}

// Bind decodes the JSON body into dst and turns validator failures into a 400 with
// per-field details. It returns false when a response has already been written.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[toSnake(fe.Field())] = fe.Tag()
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
				Success: false,
				Message: "validation failed",
				Error:   &ErrorBody{Code: "INVALID_ARGUMENT", Details: details},
			})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
			Success: false,
			Message: "malformed request body",
			Error:   &ErrorBody{Code: "INVALID_ARGUMENT"},
		})
		return false
	}
	return true
}

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// ParsePage reads ?page and ?limit, clamping limit to [1,100] with a default of 20.
func ParsePage(c *gin.Context) Page {
	page := QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := QueryInt(c, "limit", 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return Page{Page: page, Limit: limit}
}

func QueryInt(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// QueryInt64 returns nil when the parameter is absent or not a number.
func QueryInt64(c *gin.Context, key string) *int64 {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func QueryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return b
}

// Param returns a required path parameter or writes a 400.
func Param(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		Fail(c, apperr.ErrInvalidInput)
		return "", false
	}
	return v, true
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
