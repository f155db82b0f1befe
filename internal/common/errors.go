// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Cache errors.
	ErrNotFound       = errors.New("not found")
	ErrCacheEmpty     = errors.New("cache table is empty")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DataIntegrityError marks malformed or incomplete input: a required column
// that is absent, an amount that does not parse as a number, an unparseable
// date. Unlike rule findings, which are collected, a DataIntegrityError
// aborts the run before any check begins.
type DataIntegrityError struct {
	Err    error
	Source string // table or file the offending row came from
	Column string
}

func (e *DataIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: column %q: %v", e.Source, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: column %q: malformed input", e.Source, e.Column)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}

// NewDataIntegrityError wraps a parse failure with its table and column.
func NewDataIntegrityError(source, column string, err error) error {
	return &DataIntegrityError{Source: source, Column: column, Err: err}
}

// MissingColumn reports a required column absent from an input table.
func MissingColumn(source, column string) error {
	return &DataIntegrityError{Source: source, Column: column, Err: errors.New("required column is missing")}
}

// IsDataIntegrity reports whether err is (or wraps) a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var die *DataIntegrityError
	return errors.As(err, &die)
}
