package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when registering an identity that is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument marks a request the caller must fix before retrying.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPeerNotFound is returned by the directory client for unknown identities.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrPeerUnresolvable means no usable public key could be obtained for a
	// peer, so no session can be derived.
	ErrPeerUnresolvable = errors.New("peer unresolvable")
	// ErrDecryptFailure is terminal for a single message: it did not decrypt
	// even after one session repair.
	ErrDecryptFailure = errors.New("message could not be decrypted")

	// ErrConnectionClosed is returned when delivering to a connection that has
	// already gone away.
	ErrConnectionClosed = errors.New("connection closed")
)
