package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/charroom/internal/config"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Client is a type-safe query client for records decoded into T.
type Client[T any] interface {
	// Create inserts data into table and returns the stored record.
	Create(ctx context.Context, table string, data any) (*T, error)

	// Select retrieves a record by id. Returns ErrNotFound when missing.
	Select(ctx context.Context, id surrealmodels.RecordID) (*T, error)

	// Query executes a raw query and returns the rows of the first statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)

	// QueryOne executes a raw query and returns its first row, or (nil, nil).
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)

	// Execute runs a statement whose rows are not needed.
	Execute(ctx context.Context, query string, params map[string]any) error
}

// QueryExecutor handles the execution of database queries for a Client.
type QueryExecutor[T any] interface {
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	Execute(ctx context.Context, query string, params map[string]any) error
}

// ClientOption configures a Client.
type ClientOption[T any] func(*client[T])

// WithExecutor replaces the SurrealDB executor, typically with a fake in tests.
func WithExecutor[T any](executor QueryExecutor[T]) ClientOption[T] {
	return func(c *client[T]) {
		c.executor = executor
	}
}

type client[T any] struct {
	executor       QueryExecutor[T]
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a client bound to conn. conn may be nil when a custom
// executor is supplied.
func NewClient[T any](conn DBConnection, cfg config.Provider, opts ...ClientOption[T]) (Client[T], error) {
	if cfg == nil {
		return nil, NewDBError(ErrInvalidInput, "config provider cannot be nil")
	}

	queryTimeout := cfg.GetDBQueryTimeout()
	if queryTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	executeTimeout := cfg.GetDBExecuteTimeout()
	if executeTimeout <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}

	c := &client[T]{
		queryTimeout:   queryTimeout,
		executeTimeout: executeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		if conn == nil {
			return nil, NewDBError(ErrInvalidInput, "db connection cannot be nil")
		}
		c.executor = &surrealExecutor[T]{conn: conn}
	}
	return c, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	rows, err := c.executor.Query(ctx, query, params)
	if err != nil {
		return nil, WrapError(err, "query failed").WithQuery(query)
	}
	return rows, nil
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	// CREATE/UPDATE/DELETE statements don't support LIMIT.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") && !hasLimitClause(query) {
		query += " LIMIT 1"
	}

	rows, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	if err := c.executor.Execute(ctx, query, params); err != nil {
		return WrapError(err, "execute failed").WithQuery(query)
	}
	return nil
}

func (c *client[T]) Create(ctx context.Context, table string, data any) (*T, error) {
	if table == "" {
		return nil, NewDBError(ErrInvalidInput, "table cannot be empty")
	}
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE type::table($table) CONTENT $data"
	result, err := c.QueryOne(ctx, query, map[string]any{"table": table, "data": data})
	if err != nil {
		return nil, WrapError(err, "create operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no record").WithQuery(query)
	}
	return result, nil
}

func (c *client[T]) Select(ctx context.Context, id surrealmodels.RecordID) (*T, error) {
	if id.Table == "" || id.ID == nil {
		return nil, NewDBError(ErrInvalidID, "record id must name a table and key")
	}

	result, err := c.QueryOne(ctx, "SELECT * FROM $id", map[string]any{"id": id})
	if err != nil {
		return nil, WrapError(err, "select operation failed")
	}
	if result == nil {
		return nil, NewDBError(ErrNotFound, fmt.Sprintf("record %s not found", id.String()))
	}
	return result, nil
}

// surrealExecutor runs queries over a managed Connection.
type surrealExecutor[T any] struct {
	conn DBConnection
}

func (e *surrealExecutor[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]T](ctx, db, query, params)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		if results == nil || len(*results) == 0 {
			rows = nil
			return nil
		}
		first := (*results)[0]
		if first.Status != "" && first.Status != "OK" {
			return fmt.Errorf("%w: status %s", ErrQueryFailed, first.Status)
		}
		rows = first.Result
		return nil
	})
	return rows, err
}

func (e *surrealExecutor[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	return e.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
			return fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		return nil
	})
}

// hasLimitClause checks if the query already has a LIMIT clause.
func hasLimitClause(query string) bool {
	query = " " + strings.ToUpper(query) + " "
	return strings.Contains(query, " LIMIT ")
}
