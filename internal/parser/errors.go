package parser

import "fmt"

// Position locates a line in a project file. Line is 1-based.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	if p.Line == 0 {
		if p.File == "" {
			return "<input>"
		}
		return p.File
	}
	if p.File != "" {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// baseError provides common error functionality.
type baseError struct {
	pos  Position
	text string
	msg  string
}

func (e *baseError) Position() Position { return e.pos }

// Text is the original, unmodified line.
func (e *baseError) Text() string { return e.text }

// Message is the problem description without position or line.
func (e *baseError) Message() string { return e.msg }

func (e *baseError) Error() string {
	if e.text == "" {
		return fmt.Sprintf("%s: %s", e.pos, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.pos, e.msg, e.text)
}

// ParseError is a fatal problem with the structure of a project file. Any
// ParseError aborts the whole run.
type ParseError struct {
	baseError
}

// NewParseError creates a new parse error.
func NewParseError(pos Position, text, msg string) *ParseError {
	return &ParseError{baseError: baseError{pos: pos, text: text, msg: msg}}
}

// NewParseErrorf creates a new parse error with formatting.
func NewParseErrorf(pos Position, text, format string, args ...any) *ParseError {
	return NewParseError(pos, text, fmt.Sprintf(format, args...))
}

// Warning is a recoverable problem. The offending line is skipped or a
// documented default is substituted, and parsing continues.
type Warning struct {
	baseError
}

// String formats the warning the same way Error formats a ParseError.
func (w *Warning) String() string { return w.Error() }

func newWarning(pos Position, text, format string, args ...any) *Warning {
	return &Warning{baseError: baseError{pos: pos, text: text, msg: fmt.Sprintf(format, args...)}}
}
