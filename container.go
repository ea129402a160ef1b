package licensekit

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

const (
	containerMagic = "LCSF"

	// ContainerVersion is the only container format version understood.
	ContainerVersion uint32 = 1

	containerHeaderSize = len(containerMagic) + 4
)

// ContainerMode selects what a container carries.
type ContainerMode int

const (
	// ContainerToken carries a token string, stored as a JSON string.
	ContainerToken ContainerMode = iota
	// ContainerPayload carries a JSON object, such as a legacy envelope.
	ContainerPayload
)

func (m ContainerMode) String() string {
	switch m {
	case ContainerToken:
		return "token"
	case ContainerPayload:
		return "payload"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Container is a decoded license container.
type Container struct {
	Version uint32
	Mode    ContainerMode
	// Data is the token text for ContainerToken and the raw JSON object for
	// ContainerPayload.
	Data []byte
}

// EncodeContainer writes "LCSF", the version as a little-endian uint32 and
// the JSON body.
func EncodeContainer(mode ContainerMode, data []byte) ([]byte, error) {
	var body []byte
	switch mode {
	case ContainerToken:
		if !utf8.Valid(data) {
			return nil, &FormatError{Reason: "token is not valid UTF-8"}
		}
		var err error
		if body, err = json.Marshal(string(data)); err != nil {
			return nil, &FormatError{Reason: "encode token", Err: err}
		}
	case ContainerPayload:
		if !isJSONObject(data) {
			return nil, &FormatError{Reason: "payload is not a JSON object"}
		}
		body = data
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("unknown container mode %d", int(mode))}
	}

	out := make([]byte, containerHeaderSize, containerHeaderSize+len(body))
	copy(out, containerMagic)
	binary.LittleEndian.PutUint32(out[len(containerMagic):], ContainerVersion)
	return append(out, body...), nil
}

// DecodeContainer parses a license container. Unknown magic, any version
// other than ContainerVersion and bodies that are neither a JSON string nor
// a JSON object are rejected with a *FormatError.
func DecodeContainer(data []byte) (*Container, error) {
	if len(data) < containerHeaderSize {
		return nil, &FormatError{Reason: fmt.Sprintf("container is %d bytes, shorter than its header", len(data))}
	}
	if string(data[:len(containerMagic)]) != containerMagic {
		return nil, &FormatError{Reason: "bad magic"}
	}
	version := binary.LittleEndian.Uint32(data[len(containerMagic):containerHeaderSize])
	if version != ContainerVersion {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported container version %d", version)}
	}

	body := data[containerHeaderSize:]
	if !utf8.Valid(body) {
		return nil, &FormatError{Reason: "body is not valid UTF-8"}
	}

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '"':
		var token string
		if err := json.Unmarshal(trimmed, &token); err != nil {
			return nil, &FormatError{Reason: "decode token", Err: err}
		}
		return &Container{Version: version, Mode: ContainerToken, Data: []byte(token)}, nil
	case isJSONObject(trimmed):
		return &Container{Version: version, Mode: ContainerPayload, Data: append([]byte(nil), trimmed...)}, nil
	}
	return nil, &FormatError{Reason: "body is neither a JSON string nor a JSON object"}
}

func isJSONObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{' && json.Valid(data)
}
