package models

import (
	"errors"
	"fmt"
	"strings"
)

// Field names as they appear in uploaded files and error reports.
const (
	FieldSexo       = "Sexo"
	FieldArea       = "Area"
	FieldEdadHTS    = "Edad HTS"
	FieldEdadGranja = "Edad Granja"
	FieldGalpon     = "Galpon"
)

// ErrPredictorUnavailable indicates one of the four regressors is not loaded.
// This is a configuration problem and fails the whole batch.
var ErrPredictorUnavailable = errors.New("predictor unavailable")

// ErrEmptyBatch indicates a prediction was requested with zero rows.
var ErrEmptyBatch = errors.New("empty prediction batch")

// UnrecognizedCategoryError reports a categorical label outside the closed
// table. Row is zero-based and -1 when the value did not come from a file.
type UnrecognizedCategoryError struct {
	Field string
	Value string
	Row   int
	Valid []string
}

func (e *UnrecognizedCategoryError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: unrecognized %s value %q (valid: %s)", e.Row, e.Field, e.Value, strings.Join(e.Valid, ", "))
	}
	return fmt.Sprintf("unrecognized %s value %q (valid: %s)", e.Field, e.Value, strings.Join(e.Valid, ", "))
}

// MissingColumnsError rejects a whole uploaded file because required columns
// are absent.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("uploaded file is missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowError wraps a parse failure scoped to a single file row.
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: invalid %s value %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
