// Package errors provides custom error types for the vartab system.
// These errors enable programmatic error checking across merge, validation,
// annotation, and export operations throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the vartab system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoTable indicates that an operation requires a populated table
	ErrNoTable = errors.New("no table")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// LoadError indicates that a source batch could not be read. It aborts the
// merge of that source only; the consolidated table is left untouched.
type LoadError struct {
	Source string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("loading source %s from %s: %v", e.Source, e.Path, e.Err)
	}
	return fmt.Sprintf("loading source %s: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError
func NewLoadError(source, path string, err error) *LoadError {
	return &LoadError{Source: source, Path: path, Err: err}
}

// FormatError indicates that a loaded batch violates the structural contract
// of its source, such as missing key columns after preprocessing. It aborts
// the merge of that source only.
type FormatError struct {
	Source  string
	Reason  string
	Columns []string
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("source %s: %s: %s", e.Source, e.Reason, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Reason)
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewFormatError creates a new FormatError
func NewFormatError(source, reason string, columns ...string) *FormatError {
	return &FormatError{Source: source, Reason: reason, Columns: columns}
}

// DuplicateError indicates that a source name was registered twice
type DuplicateError struct {
	Name string
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("source %s already registered", e.Name)
}

// Is implements errors.Is support
func (e *DuplicateError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewDuplicateError creates a new DuplicateError
func NewDuplicateError(name string) *DuplicateError {
	return &DuplicateError{Name: name}
}

// KindError indicates that an operation was routed at a source of the wrong
// kind, such as merging a validation-only source
type KindError struct {
	Source string
	Kind   string
	Want   string
}

// Error implements the error interface
func (e *KindError) Error() string {
	return fmt.Sprintf("source %s has kind %s, want %s", e.Source, e.Kind, e.Want)
}

// Is implements errors.Is support
func (e *KindError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewKindError creates a new KindError
func NewKindError(source, kind, want string) *KindError {
	return &KindError{Source: source, Kind: kind, Want: want}
}

// LookupError indicates a reference genome lookup failure. One failed lookup
// aborts the whole enrichment batch; no partial column is committed.
type LookupError struct {
	Chrom string
	Pos   int
	Err   error
}

// Error implements the error interface
func (e *LookupError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("reference lookup at %s:%d: %v", e.Chrom, e.Pos, e.Err)
	}
	return fmt.Sprintf("reference lookup on %s: %v", e.Chrom, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError
func NewLookupError(chrom string, pos int, err error) *LookupError {
	return &LookupError{Chrom: chrom, Pos: pos, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "tsv", "vcf", "yaml", "fai", etc.
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ProcessError represents an error from an external process or command
type ProcessError struct {
	Operation string // What operation was being performed
	Command   string // The command that was executed
	Output    string // Stdout/stderr output from the process
	ExitCode  int    // Exit code if available
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("process error during %s (command: %s): %v\nOutput: %s", e.Operation, e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{
		Operation: operation,
		Command:   command,
		Output:    output,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapLoad wraps an error as a LoadError
func WrapLoad(source, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewLoadError(source, path, err)
}
