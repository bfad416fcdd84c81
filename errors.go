// CLAUDE:SUMMARY Sentinel errors for the tamis service: unknown profile, empty batch.
package tamis

import "errors"

// ErrUnknownProfile is returned when a requested profile is not configured.
var ErrUnknownProfile = errors.New("tamis: unknown profile")

// ErrEmptyBatch is returned when a batch request carries no files.
var ErrEmptyBatch = errors.New("tamis: batch carries no files")
