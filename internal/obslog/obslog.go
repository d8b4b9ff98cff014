// Package obslog provides the structured logging this module's key
// material lifecycle emits for diagnostics: generation, evolution, and
// forgetting of signing keys. It never logs secret bytes, only algorithm
// names and periods — exactly the shape of field every signing key
// lifecycle event carries.
package obslog

import "go.uber.org/zap"

// Logger is a *zap.Logger, aliased so callers of this package don't need
// a direct zap import for the common case.
type Logger = zap.Logger

// Nop returns a logger that discards everything, the default when a
// caller does not want lifecycle diagnostics.
func Nop() *Logger { return zap.NewNop() }

// KeyGenerated logs a successful key-generation event at debug level.
func KeyGenerated(log *Logger, algorithm string) {
	log.Debug("kes: signing key generated", zap.String("algorithm", algorithm))
}

// KeyUpdated logs a successful period transition at debug level.
func KeyUpdated(log *Logger, algorithm string, from, to uint64) {
	log.Debug("kes: signing key updated",
		zap.String("algorithm", algorithm),
		zap.Uint64("from_period", from),
		zap.Uint64("to_period", to),
	)
}

// KeyExpired logs an update attempt past the final period, at info level:
// this is an expected terminal condition, not a warning.
func KeyExpired(log *Logger, algorithm string, period uint64) {
	log.Info("kes: signing key expired",
		zap.String("algorithm", algorithm),
		zap.Uint64("period", period),
	)
}

// KeyForgotten logs that a signing key's locked regions were released.
func KeyForgotten(log *Logger, algorithm string) {
	log.Debug("kes: signing key forgotten", zap.String("algorithm", algorithm))
}
