package errors

import "errors"

var (
	// ErrInvalidTransition indicates a verification plan operation
	// attempted from a status that forbids it
	ErrInvalidTransition = errors.New("invalid verification plan transition")

	// ErrCannotDiscard indicates the plan's export file was already
	// downloaded or imported
	ErrCannotDiscard = errors.New("verification plan cannot be discarded")

	// ErrCannotInvalidate indicates the plan's export file was neither
	// downloaded nor imported
	ErrCannotInvalidate = errors.New("verification plan cannot be invalidated")

	// ErrEditWindowExpired indicates a manual verification edit outside
	// the allowed window after the last status change
	ErrEditWindowExpired = errors.New("verification edit window has expired")

	// ErrAlreadyExporting indicates an XLSX export is already in
	// progress or a file already exists for the plan
	ErrAlreadyExporting = errors.New("verification plan already has an export in progress or a generated file")
)
