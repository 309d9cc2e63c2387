package models

import "fmt"

// ValidationError represents an invalid request parameter
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// AnalysisError is a report-level failure: a missing column or no usable data.
// It is returned to clients as {error, available_columns?} instead of a server error.
type AnalysisError struct {
	Message          string   `json:"error"`
	AvailableColumns []string `json:"available_columns,omitempty"`
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// IsTransient returns false; the same input always yields the same failure
func (e *AnalysisError) IsTransient() bool {
	return false
}

// NoDataError builds the error returned when filtering leaves nothing to analyse
func NoDataError() *AnalysisError {
	return &AnalysisError{Message: "No data available for the specified period"}
}

// MissingColumnError builds the error returned when a requested column is absent
func MissingColumnError(column string, available []string) *AnalysisError {
	return &AnalysisError{
		Message:          fmt.Sprintf("Column %q not found in dataset", column),
		AvailableColumns: available,
	}
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsTransient returns false as not found errors are permanent
func (e *NotFoundError) IsTransient() bool {
	return false
}
