package api

import (
	"errors"
	"net/http"

	"SportsCatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor 业务错误 -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, service.ErrReference), errors.Is(err, service.ErrSearch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按错误类型返回并记录日志，5xx 记 Error，其余记 Warn
func respondError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	status := statusFor(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"status":     status,
		"request_id": c.GetString(requestIDKey),
	})
	if status >= http.StatusInternalServerError {
		entry.Error(op + " failed")
	} else {
		entry.Warn(op + " rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// badRequest 请求体或路径参数不合法
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}
