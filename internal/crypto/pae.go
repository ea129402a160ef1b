package crypto

import "encoding/binary"

// PAE returns the pre-authentication encoding of pieces:
// LE64(len(pieces)) || LE64(len(p0)) || p0 || LE64(len(p1)) || p1 ...
// The most significant bit of every length is cleared.
func PAE(pieces ...[]byte) []byte {
	size := 8
	for _, p := range pieces {
		size += 8 + len(p)
	}

	out := make([]byte, 0, size)
	out = appendLE64(out, uint64(len(pieces)))
	for _, p := range pieces {
		out = appendLE64(out, uint64(len(p)))
		out = append(out, p...)
	}
	return out
}

func appendLE64(b []byte, n uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, n&^(1<<63))
}
