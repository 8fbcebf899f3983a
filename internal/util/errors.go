package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrConnection indicates the database is unreachable or its file is corrupt
	ErrConnection = errors.New("storage connection failed")

	// ErrSchema indicates a record type declares something outside the supported set.
	// It is raised while the type is defined, never during ingestion.
	ErrSchema = errors.New("invalid record schema")

	// ErrQuery indicates malformed or failing SQL
	ErrQuery = errors.New("query failed")

	// ErrDecode indicates a stored row could not be turned back into a typed record
	ErrDecode = errors.New("decode failed")

	// ErrIdentity indicates a file could not be read while computing its identity
	ErrIdentity = errors.New("identity failed")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrNoTags indicates a file carries no readable tags and should be skipped
	ErrNoTags = errors.New("no tags")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
