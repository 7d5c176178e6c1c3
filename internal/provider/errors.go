package provider

import (
	"errors"
	"strings"

	"github.com/calvinalkan/shelter/internal/store"
)

// Identifier and input errors. All of them are returned before the store is
// touched.
var (
	// ErrUnsupportedResource reports an identifier that matches no route.
	ErrUnsupportedResource = errors.New("unsupported resource")

	// ErrUnsupportedOperation reports an operation the identifier's shape
	// does not allow, e.g. insert against an item.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrMalformedIdentifier reports an item id that does not fit in an int64.
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// ErrValidation reports a value bag or query option that fails the schema.
	ErrValidation = errors.New("validation failed")
)

// Store errors, surfaced unchanged from package store.
var (
	ErrStoreInit        = store.ErrInit
	ErrStoreUnavailable = store.ErrUnavailable
	ErrStoreWrite       = store.ErrWrite
)

// Error is the uniform error type returned by every provider operation.
//
// The underlying error message appears first, followed by context:
//
//	insert: validation failed: name is required (uri=content://shelter/pets field=name)
//
// Use [errors.Is] with the sentinels above and [errors.As] for the fields:
//
//	var pErr *provider.Error
//	if errors.As(err, &pErr) && pErr.Field != "" {
//	    fmt.Println("fix", pErr.Field)
//	}
type Error struct {
	// Op is the operation name: query, insert, update, delete or type.
	Op string

	// URI is the identifier the caller passed in. For a rejected insert this
	// is the collection identifier the row would have been added to.
	URI string

	// Field names the offending column for validation errors.
	Field string

	// Err is the underlying cause.
	Err error
}

// Error formats as "<op>: <cause> (uri=X field=Y)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}

	if suffix := e.suffix(); suffix != "" {
		b.WriteString(" ")
		b.WriteString(suffix)
	}

	return b.String()
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *Error) suffix() string {
	var parts []string

	if e.URI != "" {
		parts = append(parts, "uri="+e.URI)
	}

	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}

	if len(parts) == 0 {
		return ""
	}

	return "(" + strings.Join(parts, " ") + ")"
}

// fieldError is the internal form of a validation failure before the
// operation context is attached.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return e.err.Error() }

func (e *fieldError) Unwrap() error { return e.err }

// withContext attaches operation context and returns *Error. A fieldError
// anywhere in the chain fills Field.
func withContext(err error, op, uri string) error {
	if err == nil {
		return nil
	}

	out := &Error{Op: op, URI: uri, Err: err}

	var fe *fieldError
	if errors.As(err, &fe) {
		out.Field = fe.field
	}

	return out
}
