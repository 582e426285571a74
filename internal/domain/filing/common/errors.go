// Package common holds the error kinds shared by every stage of the filing parser.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies which layout assumption a report violated.
type ErrorKind string

const (
	KindFormat                 ErrorKind = "format"
	KindSequence               ErrorKind = "sequence"
	KindUnexpectedContinuation ErrorKind = "unexpected_continuation"
	KindMissingLineNumber      ErrorKind = "missing_line_number"
	KindTrailingContent        ErrorKind = "trailing_content"
	KindNameFormat             ErrorKind = "name_format"
	KindAddressFormat          ErrorKind = "address_format"
	KindUnknownScheduleType    ErrorKind = "unknown_schedule_type"
)

// Sentinels returned by ParseError.Unwrap, so callers can use errors.Is.
var (
	ErrFormat                 = errors.New("format error")
	ErrSequence               = errors.New("sequence error")
	ErrUnexpectedContinuation = errors.New("unexpected continuation")
	ErrMissingLineNumber      = errors.New("missing line number")
	ErrTrailingContent        = errors.New("trailing content")
	ErrNameFormat             = errors.New("name format error")
	ErrAddressFormat          = errors.New("address format error")
	ErrUnknownScheduleType    = errors.New("unknown schedule type")
)

var sentinels = map[ErrorKind]error{
	KindFormat:                 ErrFormat,
	KindSequence:               ErrSequence,
	KindUnexpectedContinuation: ErrUnexpectedContinuation,
	KindMissingLineNumber:      ErrMissingLineNumber,
	KindTrailingContent:        ErrTrailingContent,
	KindNameFormat:             ErrNameFormat,
	KindAddressFormat:          ErrAddressFormat,
	KindUnknownScheduleType:    ErrUnknownScheduleType,
}

// ParseError is a fatal parsing failure with enough context to locate it in the source report.
// Zero-valued context fields are omitted from the message.
type ParseError struct {
	Kind     ErrorKind
	Page     int
	Schedule string
	Line     int
	Field    string
	Message  string
	RawData  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Page > 0 {
		fmt.Fprintf(&b, ", page %d", e.Page)
	}
	if e.Schedule != "" {
		fmt.Fprintf(&b, ", schedule %s", e.Schedule)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ", line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ", field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.RawData != "" {
		fmt.Fprintf(&b, " (%q)", e.RawData)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return sentinels[e.Kind]
}

// Errorf builds a ParseError of the given kind with no location attached.
func Errorf(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithRaw attaches the offending source text.
func (e *ParseError) WithRaw(raw string) *ParseError {
	e.RawData = raw
	return e
}

// WithField attaches the raw field name.
func (e *ParseError) WithField(field string) *ParseError {
	e.Field = field
	return e
}

// Locate fills in page and schedule on a ParseError produced by a stage that
// does not know where in the document it is running. Existing values win.
func Locate(err error, page int, schedule string) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Page == 0 {
		pe.Page = page
	}
	if pe.Schedule == "" {
		pe.Schedule = schedule
	}
	return err
}

// KindOf reports the kind of a parse error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// IsDataDrift reports whether err signals that the report layout changed, as opposed to
// an operational failure such as I/O.
func IsDataDrift(err error) bool {
	_, ok := KindOf(err)
	return ok
}
