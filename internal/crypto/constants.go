package crypto

const (
	// SymmetricKeySize is the size of a v4 local key in bytes.
	SymmetricKeySize = 32

	// Ed25519SeedSize is the size of an Ed25519 private seed in bytes.
	Ed25519SeedSize = 32
	// Ed25519PublicKeySize is the size of an Ed25519 public key in bytes.
	Ed25519PublicKeySize = 32
	// Ed25519PrivateKeySize is the size of an Ed25519 private key (seed || public) in bytes.
	Ed25519PrivateKeySize = 64
	// Ed25519SignatureSize is the size of an Ed25519 signature in bytes.
	Ed25519SignatureSize = 64

	// X25519KeySize is the size of X25519 public and secret keys in bytes.
	X25519KeySize = 32

	// XChaChaNonceSize is the size of an XChaCha20 nonce in bytes.
	XChaChaNonceSize = 24
	// LocalNonceSize is the size of the random nonce carried in a v4.local token.
	LocalNonceSize = 32
	// MACSize is the size of the BLAKE2b authentication tags in bytes.
	MACSize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// AESBlockSize is the AES block size, which is also the CBC IV size.
	AESBlockSize = 16
)
