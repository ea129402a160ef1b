// Package crypto holds the primitives shared by the token, key-encoding and
// legacy layers of licensekit.
//
// # Algorithm Suite
//
//   - XChaCha20 (golang.org/x/crypto/chacha20): unauthenticated stream
//     cipher. Every caller pairs it with a BLAKE2b MAC and checks the tag
//     before decrypting.
//
//   - BLAKE2b (golang.org/x/crypto/blake2b): keyed MAC, subkey derivation and
//     key identifiers.
//
//   - X25519 (github.com/cloudflare/circl/dh/x25519): key agreement for
//     sealing, including conversion of Ed25519 keys to Montgomery form.
//
//   - HKDF (RFC 5869): extract-and-expand derivation for the legacy hybrid
//     path.
//
//   - AES-CBC with PKCS#7 padding: legacy block encryption only.
//
// # Pre-Authentication Encoding
//
// [PAE] implements the PASETO pre-authentication encoding. Every MAC and
// signature computed over more than one piece of data goes through it, so
// that piece boundaries cannot be shifted by an attacker.
//
// # Base64 Encoding
//
// [ToBase64URL]/[FromBase64URL] are the protocol encodings (URL-safe, no
// padding, strict). [DecodeBase64] is lenient and only used when importing
// operator-supplied key text.
package crypto
