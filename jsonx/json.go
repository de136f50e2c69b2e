// Package jsonx is the JSON codec for persisted records and CLI output.
package jsonx

import (
	jsoniter "github.com/json-iterator/go"
)

// Map keys are sorted so receipts and CLI reports serialize the same way every time.
var jsonx = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func Marshal(v interface{}) ([]byte, error) {
	return jsonx.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return jsonx.Unmarshal(data, v)
}

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return jsonx.MarshalIndent(v, prefix, indent)
}
