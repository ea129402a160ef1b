package licensekit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paserk"
	"github.com/licensekit/licensekit-go/paseto"
)

// sealedFooter is the footer of a hybrid token. The wrapped key is bound to
// the ciphertext through the v4.local tag.
type sealedFooter struct {
	WrappedKey string `json:"wpk"`
}

// SealPayload encrypts payload for the holder of recipient's private key.
// A fresh symmetric key encrypts the payload into a v4.local token and is
// sealed to recipient in the token footer. The key is disposed before
// returning. A nil r selects crypto/rand.
func SealPayload(payload []byte, recipient *keys.PublicKey, r io.Reader) (string, error) {
	key, wpk, err := paserk.SealNew(recipient, r)
	if err != nil {
		return "", fmt.Errorf("seal payload: %w", err)
	}
	defer key.Dispose()

	footer, err := json.Marshal(sealedFooter{WrappedKey: wpk})
	if err != nil {
		return "", fmt.Errorf("seal payload: %w", err)
	}

	opts := []paseto.Option{paseto.WithFooter(footer)}
	if r != nil {
		opts = append(opts, paseto.WithRandom(r))
	}
	return paseto.Encrypt(key, payload, opts...)
}

// OpenSealedPayload reverses SealPayload with the recipient's private key.
func OpenSealedPayload(token string, recipient *keys.PrivateKey) ([]byte, error) {
	msg, err := openSealed(token, recipient)
	if err != nil {
		return nil, err
	}
	return msg.Payload, nil
}

// SealedEncrypt seals a signed v4.public license token for a recipient, so
// the license is both confidential and attributable to its issuer.
func SealedEncrypt(token string, recipient *keys.PublicKey, r io.Reader) (string, error) {
	raw, err := paseto.Parse(token)
	if err != nil {
		return "", fmt.Errorf("seal license: %w", err)
	}
	if raw.Purpose != paseto.PurposePublic {
		return "", fmt.Errorf("seal license: %w: only signed tokens can be sealed", ErrHeaderMismatch)
	}
	return SealPayload([]byte(token), recipient, r)
}

// OpenSealed decrypts a sealed license with the recipient's private key and
// verifies the inner token against the issuer's public key. Decryption alone
// proves nothing about the sender, so the License is built only from the
// verified inner token.
func OpenSealed(token string, recipient *keys.PrivateKey, issuer *keys.PublicKey, opts ...paseto.Option) (*License, error) {
	msg, err := openSealed(token, recipient)
	if err != nil {
		return nil, err
	}
	return VerifyToken(string(msg.Payload), issuer, opts...)
}

func openSealed(token string, recipient *keys.PrivateKey) (*paseto.Message, error) {
	raw, err := paseto.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("open sealed token: %w", err)
	}
	if raw.Purpose != paseto.PurposeLocal {
		return nil, fmt.Errorf("open sealed token: %w: purpose %s", ErrHeaderMismatch, raw.Purpose)
	}

	// The footer is not authenticated yet; it only selects the key. A forged
	// footer yields a key that fails the tag check below.
	var footer sealedFooter
	if err := json.Unmarshal(raw.Footer, &footer); err != nil || footer.WrappedKey == "" {
		return nil, fmt.Errorf("open sealed token: %w: footer has no wrapped key", ErrMalformedToken)
	}

	key, err := paserk.Unseal(footer.WrappedKey, recipient)
	if err != nil {
		return nil, fmt.Errorf("open sealed token: %w", err)
	}
	defer key.Dispose()

	msg, err := paseto.DecryptRaw(raw, key)
	if err != nil {
		return nil, fmt.Errorf("open sealed token: %w", err)
	}
	return msg, nil
}
