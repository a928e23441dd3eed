// Package session keeps the per-peer session keys of one local identity and
// repairs them when a peer rotates its identity key.
//
// A session is derived lazily from the local private key and the peer's
// public key as published in the directory. When a message fails to
// authenticate, the peer key is fetched again, the session re-derived and the
// message retried once. Messages that still fail are reported with
// model.ErrDecryptFailure; the conversation carries on.
package session
