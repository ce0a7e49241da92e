package core

// error_messages.go defines the error sentinels of the pipeline and maps any
// error to a user-friendly message with a code for support reference.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: The uploaded file exceeds the size limit
//	          Action: Split the file into smaller chunks
//	FILE002 - Invalid CSV: The file could not be parsed as CSV
//	          Action: Ensure the file is comma-separated with a header row
//	FILE003 - Encoding error: The file contains undecodable characters
//	          Action: Save the file as UTF-8
//	FILE004 - No file: No file was provided in the "file" field
//	          Action: Select a CSV file to upload
//	FILE005 - Empty file: The uploaded file has no header row
//	          Action: Upload a CSV file with a header and data rows
//
// # Run Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many conversions in progress
//	         Action: Wait a moment and try again
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests from this client
//
// # Default (PROC000)
//
// Fallback when nothing matches. Check the server log for the request id.
//
// Sentinels are matched with errors.Is first. Errors that do not wrap a
// sentinel fall back to case-insensitive substring patterns; the first match
// wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFile is returned when the request carries no upload part.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when the upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when the input has no header line.
	ErrEmptyFile = errors.New("empty file: no header row found")

	// ErrInvalidCSV is returned when the CSV reader cannot parse the input.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrEncoding is returned when the input bytes cannot be decoded.
	ErrEncoding = errors.New("encoding error")

	// ErrUnknownMode is returned for a mode other than transform or normalize.
	ErrUnknownMode = errors.New("unknown pipeline mode")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern maps a sentinel or a substring to a user message.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		target:  ErrFileTooLarge,
		pattern: "file too large",
		msg: UserMessage{
			Message: "The uploaded file exceeds the size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		target:  ErrInvalidCSV,
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file could not be parsed as CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE002",
		},
	},
	{
		target:  ErrEncoding,
		pattern: "encoding error",
		msg: UserMessage{
			Message: "The file contains characters that could not be decoded",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		target:  ErrNoFile,
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Select a CSV file to upload in the \"file\" field",
			Code:    "FILE004",
		},
	},
	{
		target:  ErrEmptyFile,
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		target:  ErrTooManyRuns,
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "Too many conversions in progress",
			Action:  "Wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target:  context.Canceled,
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target:  context.DeadlineExceeded,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred while processing the file",
	Action:  "Please try again or contact support",
	Code:    "PROC000",
}

// MapError converts a technical error into a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.pattern != "" && strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than PROC000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
