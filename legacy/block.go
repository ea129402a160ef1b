package legacy

import "github.com/licensekit/licensekit-go/internal/crypto"

// EncryptBlock encrypts plaintext with AES-256-CBC and PKCS#7 padding.
func EncryptBlock(key, iv, plaintext []byte) ([]byte, error) {
	return crypto.EncryptCBC(key, iv, plaintext)
}

// DecryptBlock reverses EncryptBlock. The padding byte must lie in [1, 16]
// and every padding byte must equal it, otherwise ErrPadding is returned and
// no plaintext is produced.
func DecryptBlock(key, iv, ciphertext []byte) ([]byte, error) {
	return crypto.DecryptCBC(key, iv, ciphertext)
}
