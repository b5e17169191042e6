package db

import "errors"

var (
	// database errs.
	ErrEmptyPath = errors.New("database path is empty")
	ErrCommit    = errors.New("commit error")
)

var (
	// records errs.
	ErrInvalidHref     = errors.New("invalid bookmark href")
	ErrInvalidTagName  = errors.New("invalid tag name")
	ErrRecordNotFound  = errors.New("no record found")
	ErrRecordDuplicate = errors.New("record already exists")
)
