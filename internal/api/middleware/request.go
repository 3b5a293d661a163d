package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationHeader carries the request's correlation ID in both directions.
const CorrelationHeader = "X-Correlation-ID"

const maxCorrelationIDLen = 128

type ctxKey int

const (
	correlationCtxKey ctxKey = iota
	loggerCtxKey
)

// Correlation 为每个请求确定 Correlation ID：沿用客户端传入的合法值，否则生成新的 UUID。
// ID 同时写入响应头与 request context，异步任务和事件会沿用它。
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if !validCorrelationID(id) {
			id = uuid.NewString()
		}

		c.Header(CorrelationHeader, id)
		ctx := context.WithValue(c.Request.Context(), correlationCtxKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLen {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// RequestLogger 为请求派生带 correlation_id / method / route 的 logger，
// 请求结束后按状态码选择日志级别输出一条访问日志。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		reqLogger := logger.With(
			slog.String("correlation_id", CorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
		)
		if id := c.Param("id"); id != "" {
			reqLogger = reqLogger.With(slog.String("document_id", id))
		}
		ctx := context.WithValue(c.Request.Context(), loggerCtxKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		reqLogger.LogAttrs(c.Request.Context(), level, "request completed",
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// CorrelationID returns the ID assigned by Correlation, or "" outside it.
func CorrelationID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(correlationCtxKey).(string)
	return id
}

// Logger returns the request-scoped logger, falling back to slog.Default.
func Logger(c *gin.Context) *slog.Logger {
	if l, ok := c.Request.Context().Value(loggerCtxKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
