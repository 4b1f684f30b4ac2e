package executor

import "errors"

var (
	ErrColumnCountMismatch = errors.New("executor: value count does not match column count")
	ErrUniqueViolation     = errors.New("executor: value already exists in a unique column")
	ErrWhereRequired       = errors.New("executor: DELETE requires a WHERE clause")

	// ErrExit signals that the parsed statement was EXIT; ExecSQL never
	// runs an EXIT statement against the database.
	ErrExit = errors.New("executor: EXIT")
)
