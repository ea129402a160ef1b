package crypto

import (
	"bytes"
	"testing"
)

func TestPAE(t *testing.T) {
	tests := []struct {
		name   string
		pieces [][]byte
		want   []byte
	}{
		{
			name:   "no pieces",
			pieces: nil,
			want:   []byte{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "one empty piece",
			pieces: [][]byte{{}},
			want:   []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:   "two empty pieces",
			pieces: [][]byte{{}, {}},
			want: []byte{
				2, 0, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0,
			},
		},
		{
			name:   "test",
			pieces: [][]byte{[]byte("test")},
			want:   append([]byte{1, 0, 0, 0, 0, 0, 0, 0, 4, 0, 0, 0, 0, 0, 0, 0}, "test"...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PAE(tt.pieces...); !bytes.Equal(got, tt.want) {
				t.Errorf("PAE() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestPAE_BoundariesMatter(t *testing.T) {
	a := PAE([]byte("ab"), []byte("c"))
	b := PAE([]byte("a"), []byte("bc"))
	if bytes.Equal(a, b) {
		t.Error("PAE must distinguish piece boundaries")
	}
}
