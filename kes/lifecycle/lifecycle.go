// Package lifecycle decorates a KES algorithm with the structured
// diagnostics the key material lifecycle rules call for: generation,
// evolution, expiry, and forgetting are observable events, but never at
// the cost of placing a secret byte in a log line. The decorator changes
// nothing about signing or verification; it only wraps GenKey, Update,
// and Forget to emit a log line around the underlying call.
package lifecycle

import (
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/obslog"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
)

// WithLogging wraps algo so that GenKey, Update, and Forget emit
// structured log events to log. All other operations (Sign, Verify,
// DeriveVerificationKey, the size/name accessors) delegate directly.
func WithLogging(algo kes.Algorithm, log *obslog.Logger) kes.Algorithm {
	return &loggingAlgorithm{Algorithm: algo, log: log}
}

// WithLoggingCompact is WithLogging for a CompactAlgorithm, preserving
// ExtractVerificationKey.
func WithLoggingCompact(algo kes.CompactAlgorithm, log *obslog.Logger) kes.CompactAlgorithm {
	return &loggingCompactAlgorithm{loggingAlgorithm: loggingAlgorithm{Algorithm: algo, log: log}, compact: algo}
}

type loggingAlgorithm struct {
	kes.Algorithm
	log *obslog.Logger
}

func (l *loggingAlgorithm) GenKey(seed []byte) (kes.SigningKey, error) {
	sk, err := l.Algorithm.GenKey(seed)
	if err != nil {
		return nil, err
	}
	obslog.KeyGenerated(l.log, l.Algorithm.Name())
	return sk, nil
}

func (l *loggingAlgorithm) Update(sk kes.SigningKey, period uint64) (kes.SigningKey, error) {
	next, err := l.Algorithm.Update(sk, period)
	switch err {
	case nil:
		obslog.KeyUpdated(l.log, l.Algorithm.Name(), period, period+1)
	case kes.ErrExpired:
		obslog.KeyExpired(l.log, l.Algorithm.Name(), period)
	}
	return next, err
}

func (l *loggingAlgorithm) Forget(sk kes.SigningKey) {
	l.Algorithm.Forget(sk)
	obslog.KeyForgotten(l.log, l.Algorithm.Name())
}

type loggingCompactAlgorithm struct {
	loggingAlgorithm
	compact kes.CompactAlgorithm
}

func (l *loggingCompactAlgorithm) ExtractVerificationKey(sig []byte, period uint64) ([]byte, error) {
	return l.compact.ExtractVerificationKey(sig, period)
}
