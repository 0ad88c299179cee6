// Package codec provides the body encodings fetchgate speaks on the wire.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Codec encodes request payloads and decodes response bodies.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// ContentType is sent as Content-Type on payloads and as Accept.
	ContentType() string
}

// JSON is the default codec. The zero value is ready to use.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) ContentType() string                { return "application/json" }

// ByName returns the codec registered under name: "json" (or ""), "msgpack"
// or "cbor".
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON{}, nil
	case "msgpack":
		return Msgpack{}, nil
	case "cbor":
		return NewCBOR(false)
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
