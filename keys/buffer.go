package keys

import (
	"sync"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

// buffer owns key bytes. Reads and disposal are serialized so a key can be
// disposed while other goroutines hold it.
type buffer struct {
	mu       sync.RWMutex
	b        []byte
	disposed bool
}

func newBuffer(raw []byte) *buffer {
	b := make([]byte, len(raw))
	copy(b, raw)
	return &buffer{b: b}
}

func (s *buffer) read(fn func([]byte) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return ErrUseAfterDispose
	}
	return fn(s.b)
}

func (s *buffer) dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	crypto.Wipe(s.b)
	s.b = nil
	s.disposed = true
}

func (s *buffer) isDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}
