package legacy

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/keys"
)

// SignedEnvelope is the legacy license format: a JSON payload and a
// signature over its exact bytes.
type SignedEnvelope struct {
	// Payload is a string so that the marshalled envelope stays readable.
	Payload string `json:"payload"`
	// Signature covers the exact byte sequence stored in Payload.
	Signature []byte    `json:"signature"`
	Algorithm Algorithm `json:"alg"`
}

// SignEnvelope signs payload with a legacy key and returns the JSON encoded
// envelope.
func SignEnvelope(priv *keys.PrivateKey, payload []byte, r io.Reader) ([]byte, error) {
	alg, err := AlgorithmFor(priv)
	if err != nil {
		return nil, err
	}
	sig, err := Sign(priv, payload, r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&SignedEnvelope{
		Payload:   string(payload),
		Signature: sig,
		Algorithm: alg,
	})
}

// OpenEnvelope verifies a signed envelope and returns its payload. The
// envelope's algorithm must be the one implied by pub.
func OpenEnvelope(data []byte, pub *keys.PublicKey) ([]byte, error) {
	alg, err := AlgorithmFor(pub)
	if err != nil {
		return nil, err
	}

	var env SignedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Algorithm != alg {
		return nil, fmt.Errorf("%w: envelope algorithm %q, key algorithm %q", ErrSignatureInvalid, env.Algorithm, alg)
	}

	payload := []byte(env.Payload)
	if err := VerifySignature(pub, payload, env.Signature); err != nil {
		return nil, err
	}
	return payload, nil
}
