package domain

import "errors"

var (
	// ErrItemNotFound indicates the API answered null for a requested id.
	ErrItemNotFound = errors.New("item not found")

	// ErrWrongItemKind indicates an item resolved to an unexpected type.
	ErrWrongItemKind = errors.New("wrong item kind")

	// ErrMissingField indicates a required field was absent from an item.
	ErrMissingField = errors.New("missing required field")

	// ErrCommentNotFound indicates a tree lookup by id missed.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrCorruptCache indicates a cache file exists but cannot be decoded.
	ErrCorruptCache = errors.New("corrupt cache file")

	// ErrEmptyState indicates an attempt to persist or restore an empty story list.
	ErrEmptyState = errors.New("refusing empty story list state")
)
