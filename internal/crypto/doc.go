// Package crypto implements the pairwise cipher used by gophchat clients:
// P-256 identity keys exchanged as JWK, ECDH key agreement, and AES-256-GCM
// with a random 96-bit IV per message.
//
// The server never imports this package beyond parsing public keys; it only
// relays base64 ciphertext.
package crypto
