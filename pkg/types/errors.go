package types

import "errors"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // malformed headers/signatures (e.g., bad "regf")
	ErrKindCorrupt                    // structural corruption (bad sizes/offsets/tags)
	ErrKindUnsupported                // valid feature or platform we don't support
	ErrKindNotFound                   // missing key/path
	ErrKindType                       // missing value or value of a different RegType
	ErrKindState                      // invalid operation for current state (e.g., double close)
	ErrKindBackend                    // unexpected failure reported by a backend
	ErrKindClose                      // a handle failed to close during teardown
	ErrKindTornDown                   // node used after its manager tore down
)

// String returns a short, stable name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindNotFound:
		return "not-found"
	case ErrKindType:
		return "type"
	case ErrKindState:
		return "state"
	case ErrKindBackend:
		return "backend"
	case ErrKindClose:
		return "close"
	case ErrKindTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by identity and bare *Error targets by Kind, so
// errors.Is(err, &Error{Kind: ErrKindNotFound}) works for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e == t {
		return true
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotHive indicates the file lacks a valid "regf" header.
	ErrNotHive = &Error{Kind: ErrKindFormat, Msg: "not a registry hive (bad regf header)"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt hive structure"}
	// ErrUnsupported indicates a recognized but unsupported feature or platform.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported"}
	// ErrNotFound indicates a missing key or path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrMissingValue indicates the named value does not exist on the key.
	ErrMissingValue = &Error{Kind: ErrKindType, Msg: "value not present"}
	// ErrTypeMismatch indicates the requested decode doesn't match the value type.
	ErrTypeMismatch = &Error{Kind: ErrKindType, Msg: "registry value has different type"}
	// ErrAlreadyClosed indicates Close was called on a handle more than once.
	ErrAlreadyClosed = &Error{Kind: ErrKindState, Msg: "handle already closed"}
	// ErrUseAfterTeardown indicates a node was used after its manager released it.
	ErrUseAfterTeardown = &Error{Kind: ErrKindTornDown, Msg: "node used after manager teardown"}
)

// IsKind reports whether any *Error in err's tree has the given kind.
func IsKind(err error, kind ErrKind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// NotFound builds a not-found error that still matches ErrNotFound.
func NotFound(msg string) error {
	return &Error{Kind: ErrKindNotFound, Msg: msg, Err: ErrNotFound}
}

// BackendError wraps an unexpected backend failure.
func BackendError(msg string, err error) error {
	return &Error{Kind: ErrKindBackend, Msg: msg, Err: err}
}
