// Package paseto implements version 4 PASETO tokens.
//
// Two purposes are supported:
//
//   - v4.public: the message is visible and signed with Ed25519. See [Sign]
//     and [Verify].
//   - v4.local: the message is encrypted with XChaCha20 and authenticated
//     with keyed BLAKE2b. See [Encrypt] and [Decrypt].
//
// Tokens have the form
//
//	v4.<purpose>.<base64url body>[.<base64url footer>]
//
// The footer is not encrypted but is bound into the signature or
// authentication tag, as is the optional implicit assertion, which is never
// stored in the token. Both sides must supply identical assertions.
//
// [Parse] splits a token without checking it. The returned [RawToken] can be
// handed to [VerifyRaw] or [DecryptRaw] once the caller has picked a key,
// for example from the footer returned by [PeekFooter].
package paseto
