package paserk

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

const (
	pbkwSaltSize  = 16
	pbkwNonceSize = crypto.XChaChaNonceSize
	// salt || memory || iterations || parallelism || nonce
	pbkwPrefixSize = pbkwSaltSize + 8 + 4 + 4 + pbkwNonceSize

	pbkwEncryptionDomain = 0xFF
	pbkwAuthDomain       = 0xFE

	kibibyte = 1024
	// maxPasswordMemory caps the memory cost read back from a wrapped key.
	maxPasswordMemory = 4 << 30
)

// PasswordParams are the Argon2id cost parameters of a password-wrapped key.
type PasswordParams struct {
	// Memory is the memory cost in bytes. It must be a multiple of 1 KiB.
	Memory uint64
	// Iterations is the Argon2 time cost.
	Iterations uint32
	// Parallelism is the number of Argon2 lanes, between 1 and 255.
	Parallelism uint32
}

// DefaultPasswordParams are the interactive-use parameters: 64 MiB, two
// passes, one lane.
var DefaultPasswordParams = PasswordParams{
	Memory:      64 << 20,
	Iterations:  2,
	Parallelism: 1,
}

// DefaultPasswordLimit is the highest cost PasswordUnwrap accepts from a
// wrapped key: 1 GiB, 16 passes, 16 lanes.
var DefaultPasswordLimit = PasswordParams{
	Memory:      1 << 30,
	Iterations:  16,
	Parallelism: 16,
}

// exceeds reports the first cost of p above limit.
func (p PasswordParams) exceeds(limit PasswordParams) error {
	switch {
	case p.Memory > limit.Memory:
		return fmt.Errorf("argon2 memory %d exceeds limit %d", p.Memory, limit.Memory)
	case p.Iterations > limit.Iterations:
		return fmt.Errorf("argon2 iterations %d exceed limit %d", p.Iterations, limit.Iterations)
	case p.Parallelism > limit.Parallelism:
		return fmt.Errorf("argon2 parallelism %d exceeds limit %d", p.Parallelism, limit.Parallelism)
	}
	return nil
}

// Validate reports whether p can be passed to Argon2id.
func (p PasswordParams) Validate() error {
	switch {
	case p.Memory == 0 || p.Memory%kibibyte != 0:
		return fmt.Errorf("argon2 memory %d is not a positive multiple of 1024 bytes", p.Memory)
	case p.Memory > maxPasswordMemory:
		return fmt.Errorf("argon2 memory %d exceeds %d bytes", p.Memory, uint64(maxPasswordMemory))
	case p.Iterations == 0:
		return fmt.Errorf("argon2 iterations must be positive")
	case p.Parallelism == 0 || p.Parallelism > 255:
		return fmt.Errorf("argon2 parallelism %d is outside 1..255", p.Parallelism)
	case p.Memory/kibibyte < 8*uint64(p.Parallelism):
		return fmt.Errorf("argon2 memory must be at least 8 KiB per lane")
	}
	return nil
}

// PasswordWrap wraps a symmetric key (k4.local-pw) or Ed25519 private key
// (k4.secret-pw) under a password. A nil r selects crypto/rand.
func PasswordWrap(key keys.Key, password []byte, params PasswordParams, r io.Reader) (string, error) {
	t, err := wrapType(key, TypeLocalPW, TypeSecretPW)
	if err != nil {
		return "", err
	}
	if err := params.Validate(); err != nil {
		return "", err
	}
	if r == nil {
		r = rand.Reader
	}

	prefix := make([]byte, pbkwPrefixSize)
	salt := prefix[:pbkwSaltSize]
	if _, err := io.ReadFull(r, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	binary.BigEndian.PutUint64(prefix[16:24], params.Memory)
	binary.BigEndian.PutUint32(prefix[24:28], params.Iterations)
	binary.BigEndian.PutUint32(prefix[28:32], params.Parallelism)
	nonce := prefix[32:]
	if _, err := io.ReadFull(r, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	h := t.Header()
	return keys.WithRawBytes(key, func(ptk []byte) (string, error) {
		ek, ak, err := passwordKeys(password, salt, params)
		if err != nil {
			return "", err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		edk, err := crypto.XChaCha20(ek, nonce, ptk)
		if err != nil {
			return "", err
		}
		tag, err := crypto.Blake2b(crypto.MACSize, ak, []byte(h), prefix, edk)
		if err != nil {
			return "", err
		}

		out := make([]byte, 0, len(prefix)+len(edk)+len(tag))
		out = append(out, prefix...)
		out = append(out, edk...)
		out = append(out, tag...)
		return h + crypto.ToBase64URL(out), nil
	})
}

// PasswordUnwrap recovers a key wrapped by PasswordWrap, refusing costs
// above DefaultPasswordLimit. A tag mismatch is reported as
// ErrWrongPassword; no key material is returned in that case.
func PasswordUnwrap(s string, password []byte) (keys.Key, error) {
	return PasswordUnwrapWithin(s, password, DefaultPasswordLimit)
}

// PasswordUnwrapWithin is PasswordUnwrap with a caller-chosen cost limit.
// A wrapped key whose Argon2 parameters exceed limit fails with
// ErrCorruptWrapping before any key stretching is done.
func PasswordUnwrapWithin(s string, password []byte, limit PasswordParams) (keys.Key, error) {
	t, err := TypeOf(s)
	if err != nil {
		return nil, err
	}
	var keyLen int
	switch t {
	case TypeLocalPW:
		keyLen = crypto.SymmetricKeySize
	case TypeSecretPW:
		keyLen = crypto.Ed25519PrivateKeySize
	default:
		return nil, &TypeError{Want: []Type{TypeLocalPW, TypeSecretPW}, Got: string(t)}
	}

	data, err := payload(s, t, t.Header())
	if err != nil {
		return nil, err
	}
	if len(data) != pbkwPrefixSize+keyLen+crypto.MACSize {
		return nil, fmt.Errorf("%w: %s payload is %d bytes", ErrCorruptWrapping, t, len(data))
	}

	prefix := data[:pbkwPrefixSize]
	params := PasswordParams{
		Memory:      binary.BigEndian.Uint64(prefix[16:24]),
		Iterations:  binary.BigEndian.Uint32(prefix[24:28]),
		Parallelism: binary.BigEndian.Uint32(prefix[28:32]),
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWrapping, err)
	}
	if err := params.exceeds(limit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWrapping, err)
	}
	salt := prefix[:pbkwSaltSize]
	nonce := prefix[32:]
	edk := data[pbkwPrefixSize : pbkwPrefixSize+keyLen]
	tag := data[pbkwPrefixSize+keyLen:]

	ek, ak, err := passwordKeys(password, salt, params)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(ek)
	defer crypto.Wipe(ak)

	expected, err := crypto.Blake2b(crypto.MACSize, ak, []byte(t.Header()), prefix, edk)
	if err != nil {
		return nil, err
	}
	if !crypto.Equal(expected, tag) {
		return nil, ErrWrongPassword
	}

	ptk, err := crypto.XChaCha20(ek, nonce, edk)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(ptk)
	return unwrappedKey(t, ptk)
}

// passwordKeys stretches password with Argon2id and splits the result into
// encryption and authentication keys.
func passwordKeys(password, salt []byte, p PasswordParams) (ek, ak []byte, err error) {
	k := argon2.IDKey(password, salt, p.Iterations, uint32(p.Memory/kibibyte), uint8(p.Parallelism), crypto.SymmetricKeySize)
	defer crypto.Wipe(k)

	ek, err = crypto.Blake2b(crypto.SymmetricKeySize, nil, []byte{pbkwEncryptionDomain}, k)
	if err != nil {
		return nil, nil, err
	}
	ak, err = crypto.Blake2b(crypto.MACSize, nil, []byte{pbkwAuthDomain}, k)
	if err != nil {
		crypto.Wipe(ek)
		return nil, nil, err
	}
	return ek, ak, nil
}

// wrapType picks the local or secret variant of a wrapping type for key.
func wrapType(key keys.Key, local, secret Type) (Type, error) {
	switch k := key.(type) {
	case *keys.SymmetricKey:
		if err := keys.Require(k, "wrap "+string(local), keys.KindSymmetric); err != nil {
			return "", err
		}
		return local, nil
	case *keys.PrivateKey:
		if err := keys.Require(k, "wrap "+string(secret), keys.KindEd25519); err != nil {
			return "", err
		}
		return secret, nil
	case *keys.PublicKey:
		if k == nil {
			break
		}
		return "", &keys.KindError{Op: "wrap key", Want: []keys.Kind{keys.KindSymmetric, keys.KindEd25519}, Got: k.Kind()}
	}
	return "", fmt.Errorf("wrap key: %w", keys.ErrNilKey)
}

// unwrappedKey builds the key recovered from a local or secret wrapping.
func unwrappedKey(t Type, ptk []byte) (keys.Key, error) {
	switch t {
	case TypeLocalPW, TypeLocalWrap:
		k, err := keys.NewSymmetricKey(ptk)
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		k, err := keys.NewEd25519PrivateKey(ptk)
		if err != nil {
			return nil, err
		}
		return k, nil
	}
}
