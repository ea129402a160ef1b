package paserk

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

const (
	sealEncryptionDomain = 0x01
	sealAuthDomain       = 0x02
	sealNonceSize        = crypto.XChaChaNonceSize
)

// Seal encrypts a symmetric key to the holder of recipient, an Ed25519
// public key. An ephemeral X25519 key pair is generated from r (nil selects
// crypto/rand) and disposed before Seal returns.
func Seal(key *keys.SymmetricKey, recipient *keys.PublicKey, r io.Reader) (string, error) {
	if err := keys.Require(key, "seal key", keys.KindSymmetric); err != nil {
		return "", err
	}
	if err := keys.Require(recipient, "seal to recipient", keys.KindEd25519); err != nil {
		return "", err
	}
	if r == nil {
		r = rand.Reader
	}

	xpk, err := keys.WithRawBytes(recipient, func(pk []byte) ([]byte, error) {
		return crypto.Ed25519PublicToX25519(pk)
	})
	if err != nil {
		return "", fmt.Errorf("seal: recipient key: %w", err)
	}

	ephemeral, err := keys.NewGenerator(r).KeyPair(keys.KindX25519, keys.Params{})
	if err != nil {
		return "", fmt.Errorf("seal: ephemeral key: %w", err)
	}
	defer ephemeral.Dispose()

	epk, err := keys.WithRawBytes(ephemeral.Public, func(b []byte) ([]byte, error) {
		return append([]byte(nil), b...), nil
	})
	if err != nil {
		return "", err
	}

	h := TypeSeal.Header()
	return keys.WithRawBytes(ephemeral.Private, func(esk []byte) (string, error) {
		xk, err := crypto.X25519Shared(esk, xpk)
		if err != nil {
			return "", fmt.Errorf("seal: %w", err)
		}
		defer crypto.Wipe(xk)

		ek, ak, nonce, err := sealKeys(h, xk, epk, xpk)
		if err != nil {
			return "", err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		edk, err := keys.WithRawBytes(key, func(ptk []byte) ([]byte, error) {
			return crypto.XChaCha20(ek, nonce, ptk)
		})
		if err != nil {
			return "", err
		}
		tag, err := crypto.Blake2b(crypto.MACSize, ak, []byte(h), epk, edk)
		if err != nil {
			return "", err
		}

		out := make([]byte, 0, len(tag)+len(epk)+len(edk))
		out = append(out, tag...)
		out = append(out, epk...)
		out = append(out, edk...)
		return h + crypto.ToBase64URL(out), nil
	})
}

// SealNew generates a fresh symmetric key and seals it to recipient. The
// caller owns the returned key and should dispose of it after use.
func SealNew(recipient *keys.PublicKey, r io.Reader) (*keys.SymmetricKey, string, error) {
	key, err := keys.NewGenerator(r).Symmetric()
	if err != nil {
		return nil, "", err
	}
	sealed, err := Seal(key, recipient, r)
	if err != nil {
		key.Dispose()
		return nil, "", err
	}
	return key, sealed, nil
}

// Unseal recovers a key sealed to the Ed25519 private key recipient. Any
// tag mismatch is reported as ErrCorruptWrapping.
func Unseal(s string, recipient *keys.PrivateKey) (*keys.SymmetricKey, error) {
	if err := keys.Require(recipient, "unseal", keys.KindEd25519); err != nil {
		return nil, err
	}

	data, err := payload(s, TypeSeal, TypeSeal.Header())
	if err != nil {
		return nil, err
	}
	if len(data) != crypto.MACSize+crypto.X25519KeySize+crypto.SymmetricKeySize {
		return nil, fmt.Errorf("%w: seal payload is %d bytes", ErrCorruptWrapping, len(data))
	}
	tag := data[:crypto.MACSize]
	epk := data[crypto.MACSize : crypto.MACSize+crypto.X25519KeySize]
	edk := data[crypto.MACSize+crypto.X25519KeySize:]

	h := TypeSeal.Header()
	ptk, err := keys.WithRawBytes(recipient, func(sk []byte) ([]byte, error) {
		xsk, err := crypto.Ed25519SeedToX25519(sk[:crypto.Ed25519SeedSize])
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(xsk)
		xpk, err := crypto.Ed25519PublicToX25519(sk[crypto.Ed25519SeedSize:])
		if err != nil {
			return nil, err
		}

		xk, err := crypto.X25519Shared(xsk, epk)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptWrapping, err)
		}
		defer crypto.Wipe(xk)

		ek, ak, nonce, err := sealKeys(h, xk, epk, xpk)
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		expected, err := crypto.Blake2b(crypto.MACSize, ak, []byte(h), epk, edk)
		if err != nil {
			return nil, err
		}
		if !crypto.Equal(expected, tag) {
			return nil, ErrCorruptWrapping
		}
		return crypto.XChaCha20(ek, nonce, edk)
	})
	if err != nil {
		return nil, fmt.Errorf("unseal: %w", err)
	}
	defer crypto.Wipe(ptk)
	return keys.NewSymmetricKey(ptk)
}

// sealKeys derives the encryption key, authentication key and nonce from the
// shared secret and both public keys.
func sealKeys(h string, xk, epk, xpk []byte) (ek, ak, nonce []byte, err error) {
	ek, err = crypto.Blake2b(crypto.SymmetricKeySize, nil, []byte{sealEncryptionDomain}, []byte(h), xk, epk, xpk)
	if err != nil {
		return nil, nil, nil, err
	}
	ak, err = crypto.Blake2b(crypto.MACSize, nil, []byte{sealAuthDomain}, []byte(h), xk, epk, xpk)
	if err != nil {
		crypto.Wipe(ek)
		return nil, nil, nil, err
	}
	nonce, err = crypto.Blake2b(sealNonceSize, nil, epk, xpk)
	if err != nil {
		crypto.Wipe(ek)
		crypto.Wipe(ak)
		return nil, nil, nil, err
	}
	return ek, ak, nonce, nil
}
