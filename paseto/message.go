package paseto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is the authenticated content of a token.
type Message struct {
	Payload []byte
	Footer  []byte
}

// Claims decodes the JSON payload into v.
func (m *Message) Claims(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("decode claims: %w", err)
	}
	return nil
}

// Map decodes the JSON payload into a generic map. Numbers are kept as
// json.Number.
func (m *Message) Map() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(m.Payload))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return out, nil
}

// encodeClaims produces the canonical payload bytes for claims. Map keys are
// sorted by encoding/json.
func encodeClaims(claims any) ([]byte, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("encode claims: %w", err)
	}
	return payload, nil
}
