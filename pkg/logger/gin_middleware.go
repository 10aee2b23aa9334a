package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Служебные пробы заспамили бы лог - пропускаем их молча
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GinLoggerMiddleware пишет структурированную запись на каждый запрос
// Request-ID клиента сохраняется, отсутствующий - генерируется и
// возвращается в заголовке ответа
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		if _, quiet := quietPaths[path]; quiet {
			return
		}

		status := c.Writer.Status()

		event := requestEvent(status).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("query", c.Request.URL.RawQuery).
			Str("remote_addr", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Float64("duration_ms", float64(time.Since(start).Microseconds())/1000)

		if len(c.Errors) > 0 {
			event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}

func requestEvent(status int) *zerolog.Event {
	switch {
	case status >= 500:
		return Error()
	case status >= 400:
		return Warn()
	default:
		return Info()
	}
}
