// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// Every ledgerchat package accepts a *slog.Logger through a WithLogger option;
// this package is where those loggers are built.
//
// # Usage
//
//	import "github.com/dmitrymomot/ledgerchat/pkg/logger"
//
//	func main() {
//	    var cfg logger.Config
//	    config.MustLoad(&cfg)
//
//	    log := logger.NewFromConfig(cfg,
//	        logger.WithContextExtractors(environment.LoggerExtractor()),
//	    )
//	    logger.SetAsDefault(log)
//
//	    log.Info("company selected",
//	        logger.UserID(user.ID),
//	        logger.CompanyID(company.ID),
//	    )
//	}
//
// # Configuration
//
//   - WithEnvironment: text/debug for development, JSON/info otherwise.
//   - WithFormat / WithTextFormatter / WithJSONFormatter: override output format.
//   - WithLevel: set a custom slog.Level.
//   - WithAttr: attach static attributes.
//   - WithContextExtractors / WithContextValue: inject attributes from context.
//
// Helper constructors such as Error, CompanyID or QueryKey return an empty
// slog.Attr for empty input, so callers can log optional values without a nil
// check:
//
//	log.Warn("fetch failed", logger.Error(err))
package logger
