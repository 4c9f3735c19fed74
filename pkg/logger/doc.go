// Package logger builds *slog.Logger instances for the identitykit packages.
//
// New assembles a text or JSON handler from functional options (level,
// output, static attributes, environment presets) and wraps it in
// LogHandlerDecorator, which injects attributes read from the context on every
// record.
//
// attr.go keeps attribute keys consistent across packages: Component, Event,
// Kind, Alias, Algorithm, Error and friends. Components accept a logger through
// their own options and fall back to Discard, so the library is silent unless
// the caller asks for output.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "identityctl"),
//		logger.WithOutput(os.Stderr),
//	)
//	log.Info("token stored", logger.Component("vault"), logger.Kind("access"))
//
// Never log plaintext tokens, secrets or key material. Only aliases and kinds
// are safe to record.
package logger
