package ingest

import (
	"errors"
	"fmt"
)

// =============================================================================
// INGESTION ERRORS
// =============================================================================
//
// Every failed run returns an *Error carrying one of four kinds. Callers match
// a kind with errors.Is against the sentinels below, or read it with KindOf:
//
//   if errors.Is(err, ingest.ErrDuplicateProject) { ... }
//
// =============================================================================

// Kind classifies an ingestion failure.
type Kind string

const (
	// KindVendorNotFound: the filename names no roster vendor. Nothing was written.
	KindVendorNotFound Kind = "vendor_not_found"
	// KindDuplicateProject: the vendor already has a project with this title.
	KindDuplicateProject Kind = "duplicate_project"
	// KindMalformedSheet: the workbook is unreadable or lacks the title or
	// the item table header.
	KindMalformedSheet Kind = "malformed_sheet"
	// KindStorageFailure: a database operation failed. The run was rolled back.
	KindStorageFailure Kind = "storage_failure"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrVendorNotFound   = &Error{Kind: KindVendorNotFound, Message: "vendor not found"}
	ErrDuplicateProject = &Error{Kind: KindDuplicateProject, Message: "project already imported"}
	ErrMalformedSheet   = &Error{Kind: KindMalformedSheet, Message: "malformed sheet"}
	ErrStorageFailure   = &Error{Kind: KindStorageFailure, Message: "storage failure"}
)

// Error is a typed ingestion failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	// RunID is the run that failed; empty on the sentinels.
	RunID string
}

// Error renders the message. Storage failures hide their cause, which is
// still reachable through Unwrap for logging.
func (e *Error) Error() string {
	if e.Cause != nil && e.Kind != KindStorageFailure {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" when err is not an ingestion error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// RunIDOf returns the id of the failed run behind err, if any.
func RunIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RunID
	}
	return ""
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func storageFailure(cause error) *Error {
	return &Error{Kind: KindStorageFailure, Message: "storage failure: the import was rolled back", Cause: cause}
}
