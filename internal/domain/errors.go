package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileProcessing      = errors.New("error processing file")
	ErrPromptTooLarge      = errors.New("prompt too large")
	ErrRemoteAPI           = errors.New("remote api error")
	ErrStoreCorrupt        = errors.New("store corrupt")
	ErrSessionNotFound     = errors.New("session not found")
	ErrModelNotFound       = errors.New("model not found")
	ErrTurnInProgress      = errors.New("a turn is already in progress")
	ErrEmptyPrompt         = errors.New("prompt is empty")
	ErrEmptyAPIKey         = errors.New("api key is empty")
)

type UnsupportedFileTypeError struct {
	Extension string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", e.Extension)
}

func (e *UnsupportedFileTypeError) Is(target error) bool { return target == ErrUnsupportedFileType }

// FileTooLargeError reports the measured token count of an upload and the
// budget it exceeded.
type FileTooLargeError struct {
	Tokens int
	Limit  int
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("File is too large: %d tokens (limit: %d tokens)", e.Tokens, e.Limit)
}

func (e *FileTooLargeError) Is(target error) bool { return target == ErrFileTooLarge }

type FileProcessingError struct {
	Name string
	Err  error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("Error processing file %s: %v", e.Name, e.Err)
}

func (e *FileProcessingError) Unwrap() error { return e.Err }

func (e *FileProcessingError) Is(target error) bool { return target == ErrFileProcessing }

// PromptTooLargeError reports the token count of a candidate transcript and
// the budget it exceeded.
type PromptTooLargeError struct {
	Tokens int
	Limit  int
}

func (e *PromptTooLargeError) Error() string {
	return fmt.Sprintf("Total input too large: %d tokens (limit: %d tokens)", e.Tokens, e.Limit)
}

func (e *PromptTooLargeError) Is(target error) bool { return target == ErrPromptTooLarge }

type StoreCorruptError struct {
	Path string
	Err  error
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("store %s is corrupt: %v", e.Path, e.Err)
}

func (e *StoreCorruptError) Unwrap() error { return e.Err }

func (e *StoreCorruptError) Is(target error) bool { return target == ErrStoreCorrupt }

// RemoteErrorKind classifies failures of the completion service.
type RemoteErrorKind string

const (
	RemoteInvalidAPIKey    RemoteErrorKind = "invalid_api_key"
	RemoteModelUnavailable RemoteErrorKind = "model_unavailable"
	RemoteRateLimited      RemoteErrorKind = "rate_limited"
	RemoteContextTooLong   RemoteErrorKind = "context_too_long"
	RemoteOther            RemoteErrorKind = "other"
)

// RemoteError is the structured failure produced by the completion adapter.
// Message is the human-readable text shown to the user verbatim.
type RemoteError struct {
	Kind       RemoteErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteAPI }
