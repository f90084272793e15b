// Package logger builds *slog.Logger instances for storekit services.
//
// New applies functional options (format, level, output, static attributes
// and context extractors) and wraps the chosen slog.Handler with
// LogHandlerDecorator, which pulls request-scoped values such as a request id
// out of context.Context on every record.
//
// Attribute helpers in attr.go keep key names consistent across packages:
//
//	log.InfoContext(ctx, "checkout begun",
//	    logger.OrderID(order.ID),
//	    logger.Provider(string(provider)),
//	)
//
// Libraries in this module accept a logger through a WithLogger option and
// fall back to Discard when none is given.
package logger
