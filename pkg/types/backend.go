package types

// -----------------------------------------------------------------------------
// Backend primitives
// -----------------------------------------------------------------------------

// Backend opens root entries of a hierarchical store. Identifiers are
// backend-defined (a hive-relative path, "HKLM\Software", a bucket path...).
type Backend interface {
	// OpenRoot opens the entry named by identifier. Missing entries report an
	// error matching ErrNotFound.
	OpenRoot(identifier string) (Handle, error)

	// Separator is the path separator used in FullName values.
	Separator() string
}

// Handle is one open store entry. Handles are owned by whoever opened them
// and must be closed exactly once; any use after Close is undefined.
type Handle interface {
	// FullName is the fully qualified path of the entry as the store reports it.
	FullName() string

	// SubkeyCount returns the number of direct children.
	SubkeyCount() (int, error)

	// SubkeyNames lists direct children in store order. Callers must only
	// invoke it when SubkeyCount reported a nonzero count; stores are allowed
	// to misbehave otherwise.
	SubkeyNames() ([]string, error)

	// OpenChild opens the direct child called name. Missing children report
	// an error matching ErrNotFound.
	OpenChild(name string) (Handle, error)

	// ReadValue reads the named value ("" is the default value). Missing
	// values report ErrMissingValue.
	ReadValue(name string) (Value, error)

	// ValueNames lists the value names stored on this entry.
	ValueNames() ([]string, error)

	// Close releases the entry. A second call reports ErrAlreadyClosed.
	Close() error
}
