// Package requestid correlates log records and API calls of one operation.
//
// A request id lives in the context. Ensure adds one when missing, fetch
// forwards it as the X-Request-ID header, and LoggerExtractor adds it to
// every log record written with that context:
//
//	ctx, id := requestid.Ensure(ctx)
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// Middleware does the same for incoming HTTP requests, reusing a client
// supplied id only when it is short and made of [a-zA-Z0-9_-].
package requestid
