// Package logger builds *slog.Logger instances with environment defaults,
// static attributes and context extractors (request id, session id), and
// offers attribute helpers so keys stay consistent across services.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "summarist"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "subscription resolved",
//		logger.UserID(id),
//		logger.Tier(tier.String()),
//	)
//
// Error, UserID and the other id helpers return an empty attribute for
// zero values, so they can be passed without a nil check.
package logger
