package legacy

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

const (
	envelopeVersion = 1
	envelopeSalt    = 32
	envelopeInfo    = "licensekit legacy envelope v1"
)

// Envelope is the JSON form of a hybrid-encrypted message. EphemeralKey is
// PKIX DER. The ciphertext is AES-256-CBC under an HKDF-derived key, and MAC
// is HMAC-SHA-256 under a second derived key over every other field.
type Envelope struct {
	Version      int    `json:"v"`
	Curve        string `json:"curve"`
	EphemeralKey []byte `json:"epk"`
	Salt         []byte `json:"salt"`
	IV           []byte `json:"iv"`
	Ciphertext   []byte `json:"ct"`
	MAC          []byte `json:"mac"`
}

// Seal encrypts plaintext to the holder of the ECDSA private key matching
// pub. A fresh ephemeral key on the same curve is generated from r (nil
// selects crypto/rand) and disposed before Seal returns.
func Seal(pub *keys.PublicKey, plaintext []byte, r io.Reader) ([]byte, error) {
	recipient, err := pub.ECDSA()
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = rand.Reader
	}

	ephemeral, err := keys.NewGenerator(r).KeyPair(keys.KindECDSA, keys.Params{Curve: pub.Curve()})
	if err != nil {
		return nil, fmt.Errorf("seal: ephemeral key: %w", err)
	}
	defer ephemeral.Dispose()

	ephPriv, err := ephemeral.Private.ECDSA()
	if err != nil {
		return nil, err
	}
	shared, err := ComputeSharedSecret(ephPriv, recipient)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	defer crypto.Wipe(shared)

	env := &Envelope{
		Version: envelopeVersion,
		Curve:   string(pub.Curve()),
		Salt:    make([]byte, envelopeSalt),
		IV:      make([]byte, crypto.AESBlockSize),
	}
	if _, err := io.ReadFull(r, env.Salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	if _, err := io.ReadFull(r, env.IV); err != nil {
		return nil, fmt.Errorf("read iv: %w", err)
	}
	env.EphemeralKey, err = x509.MarshalPKIXPublicKey(&ephPriv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("seal: marshal ephemeral key: %w", err)
	}

	encKey, macKey, err := envelopeKeys(shared, env.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(encKey)
	defer crypto.Wipe(macKey)

	if env.Ciphertext, err = EncryptBlock(encKey, env.IV, plaintext); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	env.MAC = envelopeMAC(macKey, env)

	return json.Marshal(env)
}

// Open decrypts an envelope produced by Seal. The MAC is checked before the
// ciphertext is decrypted.
func Open(priv *keys.PrivateKey, data []byte) ([]byte, error) {
	recipient, err := priv.ECDSA()
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, env.Version)
	}
	if len(env.Salt) != envelopeSalt || len(env.IV) != crypto.AESBlockSize || len(env.MAC) != sha256.Size {
		return nil, fmt.Errorf("%w: bad field sizes", ErrMalformedEnvelope)
	}

	parsed, err := x509.ParsePKIXPublicKey(env.EphemeralKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrMalformedEnvelope, err)
	}
	ephemeral, err := keys.FromECDSAPublic(toECDSA(parsed))
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrMalformedEnvelope, err)
	}
	defer ephemeral.Dispose()
	ephPub, err := ephemeral.ECDSA()
	if err != nil {
		return nil, err
	}

	shared, err := ComputeSharedSecret(recipient, ephPub)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer crypto.Wipe(shared)

	encKey, macKey, err := envelopeKeys(shared, env.Salt)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(encKey)
	defer crypto.Wipe(macKey)

	if !hmac.Equal(envelopeMAC(macKey, &env), env.MAC) {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := DecryptBlock(encKey, env.IV, env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return plaintext, nil
}

// envelopeKeys splits 64 bytes of HKDF output into an AES key and a MAC key.
func envelopeKeys(shared, salt []byte) (encKey, macKey []byte, err error) {
	okm, err := DeriveSymmetricKey(shared, salt, []byte(envelopeInfo), crypto.AESKeySize+sha256.Size)
	if err != nil {
		return nil, nil, err
	}
	return okm[:crypto.AESKeySize], okm[crypto.AESKeySize:], nil
}

func envelopeMAC(key []byte, env *Envelope) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(crypto.PAE([]byte(env.Curve), env.EphemeralKey, env.Salt, env.IV, env.Ciphertext))
	return m.Sum(nil)
}

func toECDSA(parsed any) *ecdsa.PublicKey {
	pub, _ := parsed.(*ecdsa.PublicKey)
	return pub
}
