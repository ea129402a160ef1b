// Package legacy keeps the pre-PASETO license formats readable.
//
// It accepts only ECDSA and RSA keys; Ed25519, X25519 and symmetric keys are
// refused with an error matching keys.ErrUnsupportedKey. New licenses should
// be issued with package paseto.
//
// The package provides:
//
//   - ECDH key agreement between keys on identical curves ([ComputeSharedSecret]).
//     Curves are compared on every domain parameter; equal field sizes alone
//     are never treated as compatible.
//   - HKDF-SHA-256 key derivation ([DeriveSymmetricKey]).
//   - AES-256-CBC with PKCS#7 padding ([EncryptBlock], [DecryptBlock]).
//   - A DER codec for two-integer signatures ([EncodeSignature], [DecodeSignature]).
//   - ECDSA and RSA signatures ([Sign], [VerifySignature]).
//   - A hybrid envelope combining all of the above ([Seal], [Open]) and the
//     legacy signed license envelope ([SignEnvelope], [OpenEnvelope]).
package legacy
