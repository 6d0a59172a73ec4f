package store

import "errors"

// Errors returned by store operations. Check with errors.Is().
var (
	// ErrStoreNotFound is returned when the store file does not exist and
	// the operation refuses to create one.
	ErrStoreNotFound = errors.New("store file not found")

	// ErrSchemaVersionMismatch is returned by Initialize when the store is
	// already stamped with a different schema version. The store is never
	// silently altered; run the migration instead.
	ErrSchemaVersionMismatch = errors.New("store schema version mismatch")

	// ErrUnknownLanguage is returned when a language code is not present in
	// the seeded languages table. Writers treat this as fatal.
	ErrUnknownLanguage = errors.New("unsupported language code")

	// ErrSetNotFound is returned when no resume set exists for a key.
	ErrSetNotFound = errors.New("resume set not found")

	// ErrVersionNotFound is returned when no language variant exists for a
	// (resume key, language) pair.
	ErrVersionNotFound = errors.New("resume version not found")

	// ErrSetNotEmpty is returned when removing the last variant of a set
	// without the force override.
	ErrSetNotEmpty = errors.New("removing last variant deletes the whole set; force required")
)
