package protogen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure taxonomy. Every fatal condition is
// detected before or during the single external invocation; there is no
// partial-success state.
var (
	// ErrDuplicatePath indicates two distinct schema files resolve to the
	// same import path within one request.
	ErrDuplicatePath = errors.New("protogen: duplicate import path")

	// ErrToolFailed indicates the external generator tool failed or did
	// not produce the declared outputs.
	ErrToolFailed = errors.New("protogen: generator tool failed")

	// ErrBadConfig indicates an invalid backend or request configuration.
	ErrBadConfig = errors.New("protogen: invalid configuration")
)

// DuplicatePathError reports an import-path collision between two distinct
// schema files. The message names both files and the shared path so the
// cause is distinguishable from a tool failure.
type DuplicatePathError struct {
	Path    string // the shared import path
	File    string // storage path of the newly observed file
	Claimed string // storage path of the file that first claimed the path
}

// Error implements the error interface.
func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("protogen: proto files %s and %s have the same import path %q",
		e.File, e.Claimed, e.Path)
}

// Is reports whether the target matches the sentinel error for DuplicatePathError.
func (e *DuplicatePathError) Is(target error) bool {
	return target == ErrDuplicatePath
}

// NewDuplicatePathError creates a new DuplicatePathError.
func NewDuplicatePathError(importPath, file, claimed string) *DuplicatePathError {
	return &DuplicatePathError{
		Path:    importPath,
		File:    file,
		Claimed: claimed,
	}
}

// ToolError reports an external-tool failure: a non-zero exit or a missing
// declared output. The tool's raw diagnostic output is surfaced verbatim
// and never retried.
type ToolError struct {
	Tool     string // the invoked entry point
	ExitCode int    // process exit code, -1 when the process did not run
	Stderr   string // raw diagnostic output
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString("protogen: tool ")
	b.WriteString(e.Tool)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ToolError.
func (e *ToolError) Is(target error) bool {
	return target == ErrToolFailed
}

// NewToolError creates a new ToolError.
func NewToolError(tool string, exitCode int, stderr, message string, cause error) *ToolError {
	return &ToolError{
		Tool:     tool,
		ExitCode: exitCode,
		Stderr:   stderr,
		Message:  message,
		Cause:    cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("protogen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("protogen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrBadConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsDuplicatePathError reports whether the error is a DuplicatePathError.
func IsDuplicatePathError(err error) bool {
	var dupErr *DuplicatePathError
	return errors.As(err, &dupErr)
}

// IsToolError reports whether the error is a ToolError.
func IsToolError(err error) bool {
	var toolErr *ToolError
	return errors.As(err, &toolErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
