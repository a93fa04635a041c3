package core

// errors.go defines the error taxonomy for the import pipeline.
//
// Field-level validation failures are never returned as errors: they
// are collected into RowResult.Messages and the report summary. The
// sentinels below cover everything that does propagate, so the web
// layer can map each kind to a distinct response code with errors.Is.

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownEntityType is returned for an unrecognized entity type
	// parameter.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrUnsupportedFormat is returned when an uploaded file has an
	// extension other than .csv or .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when an uploaded file cannot be parsed
	// at all (no header row).
	ErrEmptyFile = errors.New("empty file")

	// ErrTokenNotFound is returned when a dry-run token is missing,
	// expired, or already consumed by an earlier commit.
	ErrTokenNotFound = errors.New("dry-run token not found")

	// ErrValidationBlocked is returned when commit is attempted against
	// a session whose validation report contains errors. The session is
	// left untouched; the client must re-upload a corrected file.
	ErrValidationBlocked = errors.New("import blocked by validation errors")

	// ErrStorageWrite is returned when one or more row writes failed
	// during commit. Remaining rows are still processed; the failures
	// are aggregated into the error message.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrRecordNotFound is returned by AssetStore.UpdateByKey when no
	// live record exists for the natural key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrFileTooLarge is returned when an upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidImportMode is returned for an unrecognized import mode
	// parameter.
	ErrInvalidImportMode = errors.New("invalid import mode")

	// ErrInvalidFileKind is returned for an unrecognized file kind
	// parameter.
	ErrInvalidFileKind = errors.New("invalid file kind")

	// ErrDuplicateHeader is returned when an uploaded file repeats a
	// column header; values for the repeated column would be ambiguous.
	ErrDuplicateHeader = errors.New("duplicate header")
)

func unknownEntityType(s string) error {
	return fmt.Errorf("%w: %q (expected component, spare, or store)", ErrUnknownEntityType, s)
}

func invalidImportMode(s string) error {
	return fmt.Errorf("%w: %q (expected add, update, or upsert)", ErrInvalidImportMode, s)
}

func invalidFileKind(s string) error {
	return fmt.Errorf("%w: %q (expected original or error-report)", ErrInvalidFileKind, s)
}

// UserMessage provides user-friendly error information with actionable
// guidance. The Code is quotable to support staff.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive substring
// match) to user messages. First match wins, so specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "unknown entity type",
		msg: UserMessage{
			Message: "The register type is not recognized",
			Action:  "Use component, spare, or store",
			Code:    "IMP001",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type cannot be imported",
			Action:  "Upload a .csv or .xlsx file",
			Code:    "IMP002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no data rows",
			Action:  "Download the template and fill in at least one row",
			Code:    "IMP003",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The uploaded file exceeds the size limit",
			Action:  "Split the file and import it in parts",
			Code:    "IMP004",
		},
	},
	{
		pattern: "duplicate header",
		msg: UserMessage{
			Message: "The file repeats a column header",
			Action:  "Remove or rename the duplicated column and upload again",
			Code:    "IMP010",
		},
	},
	{
		pattern: "invalid import mode",
		msg: UserMessage{
			Message: "The import mode is not recognized",
			Action:  "Use add, update, or upsert",
			Code:    "IMP008",
		},
	},
	{
		pattern: "invalid file kind",
		msg: UserMessage{
			Message: "The requested file kind is not recognized",
			Action:  "Use original or error-report",
			Code:    "IMP009",
		},
	},
	{
		pattern: "token not found",
		msg: UserMessage{
			Message: "The dry run for this import has expired or was already committed",
			Action:  "Upload the file again to start a new dry run",
			Code:    "IMP005",
		},
	},
	{
		pattern: "blocked by validation",
		msg: UserMessage{
			Message: "The file still contains validation errors",
			Action:  "Fix the rows flagged in the dry run and upload again",
			Code:    "IMP006",
		},
	},
	{
		pattern: "storage write failed",
		msg: UserMessage{
			Message: "Some rows could not be written to the register",
			Action:  "Check the import history for details and re-import the failed rows",
			Code:    "IMP007",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB002",
		},
	},
}

// defaultUserMessage is the fallback when no pattern matches.
var defaultUserMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return defaultUserMessage
	}
	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}
	return defaultUserMessage
}
