package tracing

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request named after the matched route.
// Upstream trace headers are honored and the ids are echoed back.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithIDs(c.Request.Context(),
			TraceID(c.GetHeader(TraceHeader)),
			SpanID(c.GetHeader(SpanHeader)),
		)

		name := c.FullPath()
		if name == "" {
			name = c.Request.Method + " unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		status := c.Writer.Status()
		span.SetStatus(status)
		span.SetTag("http.status", strconv.Itoa(status))

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		} else if status >= 500 {
			err = errors.New("request failed with status " + strconv.Itoa(status))
		}
		span.Finish(err)
		tracer.Submit(span)
	}
}
