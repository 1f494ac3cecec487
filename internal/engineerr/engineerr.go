// Package engineerr defines the machine-readable error taxonomy (spec §7)
// propagated out of the pipeline stages. Every stage wraps its failures in
// one of these codes so the worker can map them to a job's terminal error
// without string-matching underlying messages.
package engineerr

import (
	"errors"
	"fmt"
)

type Code string

const (
	InvalidInput          Code = "InvalidInput"
	VideoTooLong          Code = "VideoTooLong"
	FileTooLarge          Code = "FileTooLarge"
	DownloadFailed        Code = "DownloadFailed"
	TranscriptionFailed   Code = "TranscriptionFailed"
	AnalysisFailed        Code = "AnalysisFailed"
	ClipGenerationFailed  Code = "ClipGenerationFailed"
	InsufficientSegments  Code = "InsufficientSegments"
	JobNotFound           Code = "JobNotFound"
	ClipNotFound          Code = "ClipNotFound"
)

// Error is a typed, wrapped error carrying one of the Code values above.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error carrying an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the Code from err, if err (or something it wraps) is an
// *Error. Returns "" otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
