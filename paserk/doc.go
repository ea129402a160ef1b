// Package paserk encodes version 4 keys as PASERK strings.
//
// Supported types:
//
//	k4.local.            symmetric key
//	k4.public.           Ed25519 public key
//	k4.secret.           Ed25519 secret key (seed || public key)
//	k4.lid. k4.pid. k4.sid.
//	                     key identifiers, see [ID]
//	k4.local-pw. k4.secret-pw.
//	                     password wrapping with Argon2id, see [PasswordWrap]
//	k4.local-wrap.pie. k4.secret-wrap.pie.
//	                     wrapping under a symmetric key, see [Wrap]
//	k4.seal.             symmetric key sealed to an Ed25519 public key, see [Seal]
//
// Every encoding round-trips byte for byte. Decoding a k4.secret value
// recomputes the public key from the seed and rejects the value when the
// embedded public key differs.
package paserk
