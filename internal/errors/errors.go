// Package errors provides standardized error handling for lazy.
// It defines error kinds and typed errors for the three places where
// failures carry an identifier the user needs to see: files, configuration
// keys and plugin modules.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	NotADirectory
	FileOperationFailed
	// Config error kinds
	InvalidConfig
	UnknownConfigKey
	InvalidConfigValue
	// Plugin error kinds
	PluginLoadFailed
	PluginContract
	DuplicatePlugin
)

// ApplicationError is the base error type for all application errors.
// subject names the file, config key or plugin the error is about.
type ApplicationError struct {
	msg     string
	subject string
	err     error
	kind    ErrorKind
}

func newApplicationError(msg, subject string, kind ErrorKind, err error) ApplicationError {
	return ApplicationError{msg: msg, subject: subject, err: err, kind: kind}
}

// Error renders "msg[: subject][: cause]"
func (e *ApplicationError) Error() string {
	s := e.msg
	if e.subject != "" {
		s += ": " + e.subject
	}
	if e.err != nil {
		s = fmt.Sprintf("%s: %v", s, e.err)
	}
	return s
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Message returns the message alone, without identifier or cause
func (e *ApplicationError) Message() string {
	return e.msg
}

// FileError is a failure on one path
type FileError struct {
	ApplicationError
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{newApplicationError(msg, path, kind, err)}
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.subject
}

// ConfigError is a failure on one configuration key or file
type ConfigError struct {
	ApplicationError
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{newApplicationError(msg, param, kind, err)}
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.subject
}

// PluginError represents a failure tied to one plugin module
type PluginError struct {
	ApplicationError
}

// NewPluginError creates a new plugin error for the module identified by source
func NewPluginError(msg string, source string, kind ErrorKind, err error) *PluginError {
	return &PluginError{newApplicationError(msg, source, kind, err)}
}

// Source returns the module identifier associated with the error
func (e *PluginError) Source() string {
	return e.subject
}

// New creates a new error with a message
func New(msg string) error {
	e := newApplicationError(msg, "", Unknown, nil)
	return &e
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	e := newApplicationError(msg, "", Unknown, err)
	return &e
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the outermost application error in err's chain,
// or Unknown when there is none.
func KindOf(err error) ErrorKind {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(interface{ Kind() ErrorKind }); ok {
			return k.Kind()
		}
	}
	return Unknown
}

func hasKind[T interface {
	*FileError | *ConfigError | *PluginError
	Kind() ErrorKind
}](err error, kind ErrorKind) bool {
	var target T
	return errors.As(err, &target) && target.Kind() == kind
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	return hasKind[*FileError](err, FileNotFound)
}

// IsNotADirectory checks if the error reports a path that is not a directory
func IsNotADirectory(err error) bool {
	return hasKind[*FileError](err, NotADirectory)
}

// IsUnknownConfigKey checks if the error is about a configuration key that does not exist
func IsUnknownConfigKey(err error) bool {
	return hasKind[*ConfigError](err, UnknownConfigKey)
}

// IsPluginLoadFailed checks if the error is a plugin load failure
func IsPluginLoadFailed(err error) bool {
	return hasKind[*PluginError](err, PluginLoadFailed)
}

// IsDuplicatePlugin checks if the error reports a plugin name that is already registered
func IsDuplicatePlugin(err error) bool {
	return hasKind[*PluginError](err, DuplicatePlugin)
}
