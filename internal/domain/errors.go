package domain

import "errors"

var (
	// ErrNotApplicable marks an inspection the engine cannot perform.
	ErrNotApplicable = errors.New("not applicable for this database engine")
	// ErrUnsupportedEngine is returned when no probe handles a database type.
	ErrUnsupportedEngine = errors.New("unsupported database type")
)
