package formats

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Lyric encodings understood by the MIDI adapter.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift-jis"
)

// LookupEncoding resolves a text encoding name for MIDI meta events.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "shift-jis", "sjis", "shiftjis", "cp932":
		return japanese.ShiftJIS, nil
	}
	return nil, fmt.Errorf("unknown text encoding %q", name)
}

func decodeText(enc encoding.Encoding, raw string) (string, error) {
	s, _, err := transform.String(enc.NewDecoder(), raw)
	return s, err
}

func encodeText(enc encoding.Encoding, s string) (string, error) {
	raw, _, err := transform.String(enc.NewEncoder(), s)
	return raw, err
}
