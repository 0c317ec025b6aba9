// Package response writes the JSON envelopes shared by every HTTP handler and
// maps service errors onto status codes and localized messages.
package response

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-stock-service/pkg/apperror"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/i18n"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OK writes {"success": true, ...body}.
func OK(c *gin.Context, status int, body gin.H) {
	out := gin.H{"success": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// Error writes {"success": false, "message": ..., "field_errors": ...} for err.
// Unexpected errors are logged and reported without their detail.
func Error(c *gin.Context, log logger.ZapLogger, err error) {
	lang := c.GetHeader("Accept-Language")
	status, messageID := classify(err)

	body := gin.H{"success": false}
	if ve, ok := apperror.AsValidation(err); ok {
		body["message"] = i18n.T(lang, ve.MessageID, ve.Args)
		if len(ve.Fields) > 0 {
			fields := make(map[string]string, len(ve.Fields))
			for field, id := range ve.Fields {
				fields[field] = i18n.T(lang, id, ve.Args)
			}
			body["field_errors"] = fields
		}
	} else {
		body["message"] = i18n.T(lang, messageID, nil)
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, body)
}

// StatusOf returns the HTTP status err is reported with.
func StatusOf(err error) int {
	status, _ := classify(err)
	return status
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrInvariantViolation), errors.Is(err, errors.NotValid):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound, "product_not_found"
	case errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict, "product_exists"
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errors.Forbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, cache.ErrLockNotAcquired):
		return http.StatusServiceUnavailable, "busy"
	}
	return http.StatusInternalServerError, "internal_error"
}

// Warning is a localized secondary failure attached to a successful write.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Warnings localizes warning codes for the caller's language.
func Warnings(c *gin.Context, codes ...string) []Warning {
	lang := c.GetHeader("Accept-Language")
	out := make([]Warning, 0, len(codes))
	for _, code := range codes {
		out = append(out, Warning{Code: code, Message: i18n.T(lang, code, nil)})
	}
	return out
}

// Page reads page and page_size from the query string. Missing or invalid
// values fall back to the first page of defaultPageSize.
func Page(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
