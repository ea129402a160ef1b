package keys

import "github.com/licensekit/licensekit-go/internal/crypto"

// WithRawBytes calls fn with a copy of the raw key material. The copy is
// wiped when fn returns, so fn must not retain it. The layout of the bytes
// depends on the key kind; see [PublicKey] and [PrivateKey].
func WithRawBytes[T any](k Key, fn func(raw []byte) (T, error)) (T, error) {
	var out T
	if isNil(k) {
		return out, ErrNilKey
	}

	err := k.material().read(func(b []byte) error {
		tmp := make([]byte, len(b))
		copy(tmp, b)
		defer crypto.Wipe(tmp)

		var err error
		out, err = fn(tmp)
		return err
	})
	return out, err
}
