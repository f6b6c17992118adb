package feed

import "errors"

var (
	// ErrEmptyBody is returned when a post or comment body is blank after
	// trimming whitespace.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrPostNotFound is returned when no post matches the given id.
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound is returned when no comment matches the given id.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrAccountNotFound is returned when no account matches the given user id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSelfFollow is returned when a user attempts to follow themself.
	ErrSelfFollow = errors.New("you can't follow yourself")
)
