// Package idgen provides pluggable ID generation.
//
// The run history store accepts a Generator, making the ID strategy a
// startup-time decision rather than a compile-time one; request correlation
// IDs come from Short.
package idgen

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable and globally unique; the convention for run IDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Short returns a Generator that produces lowercase hex IDs from n random
// bytes. Compact and log-friendly; used for per-request correlation IDs
// where a UUID is too verbose.
func Short(n int) Generator {
	return func() string {
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		return hex.EncodeToString(buf)
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
// Useful for type-scoped identifiers (e.g. "run_", "req_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the module default: UUIDv7 (RFC 9562).
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}
