/*
Package tracing times requests and renders and logs them as spans.

Every HTTP request gets a span named after its route. Handlers open child
spans around position and page renders, so a slow page can be traced to
the position that made it slow. Finished spans go to a buffered collector
(1000 spans) that logs them through zap; spans that do not fit are
dropped and counted.

Ids are ULIDs prefixed with trace_ and span_, and propagate through the
X-Trace-ID and X-Span-ID headers.

	tracer := tracing.New("modulekit", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "render position")
	span.SetTag("position", "sidebar")
	out, err := registry.Render(ctx, "sidebar")
	span.Finish(err)
	tracer.Submit(span)

Fields(ctx) adds the current ids to a log line.
*/
package tracing
