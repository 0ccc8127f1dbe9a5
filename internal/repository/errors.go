package repository

import "errors"

var (
	// ErrPersistenceFailed wraps any failure to write a record
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrUnsupportedPartitionKey indicates a container partition key path this repository cannot fill
	ErrUnsupportedPartitionKey = errors.New("unsupported partition key path")
)
