package db

import "errors"

var (
	ErrLogExists   = errors.New("daily log already exists for date")
	ErrLogNotFound = errors.New("daily log not found")
)
