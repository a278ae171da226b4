package errors

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Error code constants for structured errors
const (
	CodeParseError        = "PARSE_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeCyclicDependency  = "CYCLIC_DEPENDENCY"
	CodeUnknownTarget     = "UNKNOWN_TARGET"
	CodeConstructionError = "CONSTRUCTION_ERROR"
	CodeDirectiveConflict = "DIRECTIVE_CONFLICT"
	CodeTargetExists      = "TARGET_ALREADY_EXISTS"
)

// Error represents a structured container error with context
type Error struct {
	Code      string
	Message   string
	Cause     error
	Timestamp time.Time
	Context   map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for Error.
// Compares by error code, allowing matching against sentinel errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ErrParse creates a parse error for a malformed document
func ErrParse(message string, cause error) *Error {
	return &Error{
		Code:      CodeParseError,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// ErrParseAt creates a parse error carrying the source position
func ErrParseAt(message string, line, column int, cause error) *Error {
	return &Error{
		Code:      CodeParseError,
		Message:   message + " at line " + strconv.Itoa(line) + ", column " + strconv.Itoa(column),
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"line": line, "column": column},
	}
}

// ErrNotFound creates an error for a name absent from the document
func ErrNotFound(name string) *Error {
	return &Error{
		Code:      CodeNotFound,
		Message:   "service '" + name + "' not found",
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"service_name": name},
	}
}

// ErrCyclicDependency creates an error naming the full dependency cycle
func ErrCyclicDependency(path []string) *Error {
	return &Error{
		Code:      CodeCyclicDependency,
		Message:   "cyclic dependency detected: " + strings.Join(path, " -> "),
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"cycle": path},
	}
}

// ErrUnknownTarget creates an error for an unregistered target type
func ErrUnknownTarget(target string) *Error {
	return &Error{
		Code:      CodeUnknownTarget,
		Message:   "target type '" + target + "' is not registered",
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"target": target},
	}
}

// ErrUnknownMethod creates an error for a construction entry point the
// target does not expose
func ErrUnknownMethod(target, method string) *Error {
	return &Error{
		Code:      CodeUnknownTarget,
		Message:   "target type '" + target + "' has no method '" + method + "'",
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"target": target, "method": method},
	}
}

// ErrConstruction wraps a failure raised by the target's own constructor
func ErrConstruction(target string, cause error) *Error {
	return &Error{
		Code:      CodeConstructionError,
		Message:   "construction of '" + target + "' failed",
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"target": target},
	}
}

// ErrDirectiveConflict creates an error for contradictory directive keys
func ErrDirectiveConflict(detail string) *Error {
	return &Error{
		Code:      CodeDirectiveConflict,
		Message:   "directive conflict: " + detail,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// ErrTargetExists creates an error for a duplicate registry entry
func ErrTargetExists(target string) *Error {
	return &Error{
		Code:      CodeTargetExists,
		Message:   "target type '" + target + "' already registered",
		Timestamp: time.Now(),
		Context:   map[string]interface{}{"target": target},
	}
}

// Sentinel errors for use with errors.Is comparisons
var (
	ErrParseSentinel             = &Error{Code: CodeParseError}
	ErrNotFoundSentinel          = &Error{Code: CodeNotFound}
	ErrCyclicDependencySentinel  = &Error{Code: CodeCyclicDependency}
	ErrUnknownTargetSentinel     = &Error{Code: CodeUnknownTarget}
	ErrConstructionSentinel      = &Error{Code: CodeConstructionError}
	ErrDirectiveConflictSentinel = &Error{Code: CodeDirectiveConflict}
	ErrTargetExistsSentinel      = &Error{Code: CodeTargetExists}
)

// IsParseError checks if the error is a document parse error
func IsParseError(err error) bool {
	return errors.Is(err, ErrParseSentinel)
}

// IsNotFound checks if the error is a missing-service error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFoundSentinel)
}

// IsCyclicDependency checks if the error is a dependency cycle error
func IsCyclicDependency(err error) bool {
	return errors.Is(err, ErrCyclicDependencySentinel)
}

// IsUnknownTarget checks if the error is an unregistered-target error
func IsUnknownTarget(err error) bool {
	return errors.Is(err, ErrUnknownTargetSentinel)
}

// IsConstruction checks if the error wraps a constructor failure
func IsConstruction(err error) bool {
	return errors.Is(err, ErrConstructionSentinel)
}

// IsDirectiveConflict checks if the error is a directive conflict
func IsDirectiveConflict(err error) bool {
	return errors.Is(err, ErrDirectiveConflictSentinel)
}

// Cycle returns the dependency cycle recorded on a cyclic dependency
// error, or nil when err is not one.
func Cycle(err error) []string {
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeCyclicDependency {
		return nil
	}
	if cycle, ok := e.Context["cycle"].([]string); ok {
		return cycle
	}
	return nil
}

// Is reports whether any error in err's chain matches target.
// Convenience wrapper around errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// Convenience wrapper around errors.As from the standard library.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
// Convenience wrapper around errors.Unwrap from the standard library.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New returns an error that formats as the given text.
// Convenience wrapper around errors.New from the standard library.
func New(text string) error {
	return errors.New(text)
}
