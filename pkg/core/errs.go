package core

import "errors"

var (
	ErrEmptyDataframe      = errors.New("empty dataframe")
	ErrUnorderedTimestamps = errors.New("timestamps must be strictly increasing")
	ErrColumnSizeMismatch  = errors.New("column sizes do not match")
)
