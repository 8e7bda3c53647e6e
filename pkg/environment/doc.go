// Package environment propagates the application environment (development,
// staging, production) through context.Context and structured logs.
//
//	ctx := environment.WithContext(ctx, environment.Parse(os.Getenv("APP_ENV")))
//	log := logger.New(logger.WithContextExtractors(environment.LoggerExtractor()))
package environment
