// Package apperr defines the error taxonomy shared by the analytics core.
//
// Range and configuration problems are returned to the caller before any
// aggregation starts. Integrity problems are per record: the offending record
// is excluded and the batch continues. Insufficient data is never fatal; the
// stage that hit it substitutes a neutral default.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Code identifies the class of an analytics error.
type Code string

const (
	CodeInvalidRange     Code = "INVALID_RANGE"
	CodeDataIntegrity    Code = "DATA_INTEGRITY"
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
)

// InvalidRangeError reports a period that cannot be resolved.
type InvalidRangeError struct {
	Start    time.Time
	End      time.Time
	Selector string
	Reason   string
}

func (e *InvalidRangeError) Error() string {
	if e.Selector != "" && e.Start.IsZero() && e.End.IsZero() {
		return fmt.Sprintf("[%s] period %q: %s", CodeInvalidRange, e.Selector, e.Reason)
	}
	return fmt.Sprintf("[%s] period %s..%s: %s", CodeInvalidRange,
		e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly), e.Reason)
}

// Code returns CodeInvalidRange.
func (e *InvalidRangeError) Code() Code { return CodeInvalidRange }

// DataIntegrityError reports a record that violates a data invariant.
type DataIntegrityError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *DataIntegrityError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("[%s] record %s: %s %s", CodeDataIntegrity, e.RecordID, e.Field, e.Reason)
	}
	return fmt.Sprintf("[%s] %s %s", CodeDataIntegrity, e.Field, e.Reason)
}

// Code returns CodeDataIntegrity.
func (e *DataIntegrityError) Code() Code { return CodeDataIntegrity }

// InsufficientDataError reports that a stage had nothing to compute over.
type InsufficientDataError struct {
	Stage  string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", CodeInsufficientData, e.Stage, e.Reason)
}

// Code returns CodeInsufficientData.
func (e *InsufficientDataError) Code() Code { return CodeInsufficientData }

// CodeOf returns the taxonomy code of err, or "" when err is not one of ours.
func CodeOf(err error) Code {
	var coded interface{ Code() Code }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// IsInvalidRange reports whether err wraps an *InvalidRangeError.
func IsInvalidRange(err error) bool {
	var target *InvalidRangeError
	return errors.As(err, &target)
}

// IsDataIntegrity reports whether err wraps a *DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var target *DataIntegrityError
	return errors.As(err, &target)
}

// IsInsufficientData reports whether err wraps an *InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}
