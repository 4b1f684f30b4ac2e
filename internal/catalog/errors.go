package catalog

import "errors"

var (
	ErrTableExists      = errors.New("catalog: table already exists")
	ErrTableNotFound    = errors.New("catalog: table not found")
	ErrColumnNotFound   = errors.New("catalog: column not found")
	ErrNotADirectory    = errors.New("catalog: not a directory")
	ErrSchemaCorruption = errors.New("catalog: schema table is missing an expected row")
)
