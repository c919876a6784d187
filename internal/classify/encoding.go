package classify

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Decoder turns raw file bytes into text using one preferred encoding, with a
// permissive fallback that substitutes the Unicode replacement character for
// undecodable sequences instead of failing.
type Decoder struct {
	name string
	enc  encoding.Encoding // nil for the UTF-8 fast path
}

// DecodeResult is the tagged outcome of a decode attempt.
type DecodeResult struct {
	Text string

	// Fallback is true when the strict decode did not hold and replacement
	// characters were substituted.
	Fallback bool
}

// NewDecoder resolves an encoding by its IANA name. The empty name and the
// usual UTF-8 spellings select the native fast path. Unknown names are a
// configuration error, surfaced before any traversal starts.
func NewDecoder(name string) (*Decoder, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "", "utf-8", "utf8":
		return &Decoder{name: "utf-8"}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("classify: unknown encoding %q", name)
	}
	return &Decoder{name: normalized, enc: enc}, nil
}

// Name returns the normalized encoding name.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts data to UTF-8 text. It never panics and only returns an
// error when no text can be produced at all.
func (d *Decoder) Decode(data []byte) (DecodeResult, error) {
	if d.enc == nil {
		if utf8.Valid(data) {
			return DecodeResult{Text: string(data)}, nil
		}
		return DecodeResult{
			Text:     strings.ToValidUTF8(string(data), string(utf8.RuneError)),
			Fallback: true,
		}, nil
	}

	decoded, err := d.enc.NewDecoder().Bytes(data)
	if err != nil {
		return DecodeResult{}, fmt.Errorf("classify: decoding as %s: %w", d.name, err)
	}
	// x/text decoders substitute U+FFFD for bytes the encoding cannot
	// represent; the marker's presence is what flags the fallback.
	if bytes.ContainsRune(decoded, utf8.RuneError) && !bytes.ContainsRune(data, utf8.RuneError) {
		return DecodeResult{Text: string(decoded), Fallback: true}, nil
	}
	return DecodeResult{Text: string(decoded)}, nil
}
