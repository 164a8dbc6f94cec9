package middleware

import (
	"time"

	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет краткие логи
type RequestLogger struct {
	log *logging.Logger
}

// NewRequestLogger создаёт middleware; l == nil означает логгер по умолчанию
func NewRequestLogger(l *logging.Logger) *RequestLogger {
	if l == nil {
		l = logging.Default()
	}
	return &RequestLogger{log: l}
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// trace-id берём из OpenTelemetry, если спан уже создан
		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = uuid.NewString()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Trace-Id", traceID)

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		rl.log.Debug("[HTTP] ▶ %s %s ip=%s trace=%s", method, path, c.ClientIP(), traceID)

		c.Next()

		rl.log.Info("[HTTP] ◀ %s %s %d %s trace=%s", method, path, c.Writer.Status(), time.Since(start), traceID)
	}
}
