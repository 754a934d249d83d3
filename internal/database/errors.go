package database

import (
	"errors"
	"fmt"
)

// Common database errors that can be checked using errors.Is().
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidID       = errors.New("invalid ID format")
	ErrInvalidInput    = errors.New("invalid input data")
	ErrQueryFailed     = errors.New("query execution failed")
	ErrMultipleResults = errors.New("multiple results found when one was expected")
	ErrNotConnected    = errors.New("database not connected")
)

// DBError represents a database error with additional context.
type DBError struct {
	err     error
	context string
	query   string
	params  map[string]any
}

// NewDBError creates a new DBError. context describes the operation that
// was being performed.
func NewDBError(err error, context string) *DBError {
	return &DBError{
		err:     err,
		context: context,
	}
}

// WithQuery adds query information to the error.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// WithParams adds query parameters to the error.
func (e *DBError) WithParams(params map[string]any) *DBError {
	e.params = params
	return e
}

func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s\nQuery: %s", msg, e.query)
	}
	if len(e.params) > 0 {
		msg = fmt.Sprintf("%s\nParams: %+v", msg, e.params)
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

func (e *DBError) Unwrap() error {
	return e.err
}

// Query returns the query that failed, if recorded.
func (e *DBError) Query() string {
	return e.query
}

// WrapError wraps err with additional context. An existing DBError keeps its
// query and params and gains the new context as a prefix.
func WrapError(err error, context string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.context != "" {
			context = fmt.Sprintf("%s: %s", context, dbErr.context)
		}
		return &DBError{err: dbErr.err, context: context, query: dbErr.query, params: dbErr.params}
	}
	return NewDBError(err, context)
}
