// Package keys is the typed key model shared by every licensekit layer.
//
// A key is one of three shapes: [SymmetricKey], [PublicKey] or
// [PrivateKey]. Each carries a [Kind] that downstream packages branch on:
//
//   - [KindSymmetric]: 32-byte key for v4.local tokens and key wrapping.
//   - [KindEd25519]: signing-capable keys for v4.public tokens.
//   - [KindX25519]: encryption-only key agreement keys.
//   - [KindECDSA], [KindRSA]: legacy keys, accepted only by package legacy.
//
// Operations given the wrong kind fail fast with an error matching
// [ErrUnsupportedKey].
//
// # Raw Key Material
//
// Keys never print or serialize their bytes. [WithRawBytes] is the only way
// to reach raw material; it hands the callback a private copy that is wiped
// when the callback returns. [ExportText] produces PEM or base64url text for
// operators.
//
// # Disposal
//
// Every key can be disposed with Dispose, which zeroes its backing storage.
// Disposal is idempotent and irreversible; any later use fails with
// [ErrUseAfterDispose]. Transient keys should be disposed with defer right
// after they are created:
//
//	key, err := keys.DefaultGenerator().Symmetric()
//	if err != nil {
//	    return err
//	}
//	defer key.Dispose()
//
// # Randomness
//
// Key generation reads from the [Generator] passed in. There is no
// package-level random state; tests inject a deterministic reader with
// [NewGenerator].
package keys
