package engine

import "errors"

// Sentinel errors for the failure modes callers are expected to branch on
// with errors.Is. None of these are retried internally; every operation
// validates ownership and preconditions before mutating anything, so a
// failure leaves the filesystem as it was, with the single exception of an
// interrupted multi-location propagation (see SyncSkill).
var (
	// ErrArchiveNotMaterialized means the canonical path is a file, not a
	// directory. Unpacking archives into directories is the caller's job.
	ErrArchiveNotMaterialized = errors.New("canonical skill is not materialized as a directory")

	// ErrCanonicalInvalid means the canonical path is absent or its manifest
	// still lacks a baseline hash after seeding.
	ErrCanonicalInvalid = errors.New("canonical replica missing or invalid")

	// ErrUnmanagedDestination means an export target exists but is not
	// provably owned by this skill. It is never overwritten.
	ErrUnmanagedDestination = errors.New("export destination exists but is not managed by this skill")

	// ErrMissingManagedExport means a forced source names a location with no
	// resolvable replica.
	ErrMissingManagedExport = errors.New("no managed export found for location")
)
