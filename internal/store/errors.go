package store

import "errors"

var (
	// ErrCorruptStore is returned when a store image cannot be read as the
	// expected schema.
	ErrCorruptStore = errors.New("corrupt store image")
	// ErrUnknownWord is returned when an operation targets a word that has
	// no record.
	ErrUnknownWord = errors.New("unknown word")
	// ErrEmptyWord is returned when a record would be created without a word.
	ErrEmptyWord = errors.New("word must be non-empty")
)
