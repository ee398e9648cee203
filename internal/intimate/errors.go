package intimate

import "errors"

var (
	// ErrSelfRequest is returned when sender and receiver are the same user.
	ErrSelfRequest = errors.New("intimate: cannot send a request to yourself")

	// ErrUserNotFound is returned when one side of the pair does not exist.
	ErrUserNotFound = errors.New("intimate: user not found")

	// ErrAlreadyRequested means a record for the pair exists already, in
	// either direction. Callers can treat it as success.
	ErrAlreadyRequested = errors.New("intimate: request already exists")

	// ErrNotFound means there is no record for the (sender, receiver) pair.
	ErrNotFound = errors.New("intimate: request not found")

	// ErrAmbiguousState means more than one record matched a pair, which can
	// only happen with rows written before the pair key was enforced.
	ErrAmbiguousState = errors.New("intimate: more than one request for the same pair")
)
