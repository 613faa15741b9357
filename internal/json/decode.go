// Package json provides lenient JSON decoding for hand-maintained dataset files.
//
// Fragment files are edited by hand and often carry comments, trailing commas
// or a UTF-8 byte order mark. This package normalizes such input before
// handing it to encoding/json.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a BOM and converts JSONC (comments, trailing commas) to plain JSON.
func normalize(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return jsonc.ToJSON(data)
}

// Decode parses data into a value of type T.
//
// Numbers are decoded as json.Number when T holds interface values, so
// integer fields survive a decode/encode round trip unchanged.
func Decode[T any](data []byte) (T, error) {
	var result T
	if err := DecodeInto(data, &result); err != nil {
		return result, err
	}
	return result, nil
}

// DecodeString is Decode for string input.
func DecodeString[T any](s string) (T, error) {
	return Decode[T]([]byte(s))
}

// DecodeInto parses data into the value pointed to by v.
func DecodeInto(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(normalize(data)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON %q: %w", preview(data), err)
	}
	// Trailing garbage after the first value is an error, not silently ignored.
	if dec.More() {
		return fmt.Errorf("failed to decode JSON %q: unexpected data after value", preview(data))
	}
	return nil
}

// LooksStructured reports whether s appears to hold a serialized array or object.
func LooksStructured(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

func preview(data []byte) string {
	s := string(bytes.TrimSpace(data))
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}
