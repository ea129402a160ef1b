package licensekit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/licensekit/licensekit-go/keys"
)

var fixedNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newEd25519Pair(t *testing.T) *keys.KeyPair {
	t.Helper()
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindEd25519, keys.Params{})
	require.NoError(t, err)
	t.Cleanup(pair.Dispose)
	return pair
}

func newECDSAPair(t *testing.T) *keys.KeyPair {
	t.Helper()
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindECDSA, keys.Params{Curve: keys.CurveP256})
	require.NoError(t, err)
	t.Cleanup(pair.Dispose)
	return pair
}

func validClaims() Claims {
	return Claims{
		Subject:   "L1",
		AppID:     "com.example.app",
		Type:      TypeStandard,
		IssuedAt:  fixedNow.Add(-24 * time.Hour),
		ExpiresAt: fixedNow.Add(365 * 24 * time.Hour),
		Features:  map[string]any{"seats": 5, "export": true},
		Metadata:  map[string]any{"customer": "ACME"},
	}
}

func issue(t *testing.T, priv *keys.PrivateKey, c Claims, opts ...Option) string {
	t.Helper()
	iss, err := NewIssuer(priv, append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	token, err := iss.Issue(c)
	require.NoError(t, err)
	return token
}

// memStorage is an in-memory Storage with switchable failures.
type memStorage struct {
	mu       sync.Mutex
	data     []byte
	failSave bool
	failLoad bool
}

func (m *memStorage) Save(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return false
	}
	m.data = append([]byte(nil), data...)
	return true
}

func (m *memStorage) Load() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad || m.data == nil {
		return nil, false
	}
	return append([]byte(nil), m.data...), true
}

func (m *memStorage) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data != nil
}

func (m *memStorage) Delete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return true
}
