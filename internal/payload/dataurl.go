package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DataURLBody returns everything after the first comma of a data URL. A
// string without a comma is returned unchanged.
func DataURLBody(s string) string {
	return s[strings.Index(s, ",")+1:]
}

// DecodeBase64 decodes a base64 payload, tolerating embedded whitespace and
// missing padding.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, errors.New("empty base64 payload")
	}
	b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return b, nil
}

// DataURLMIME returns the MIME token of a "data:" string: the text between
// "data:" and the first ";". ok is false when s does not start with "data:".
// Only this narrow shape is recognised; there is no general sniffing.
func DataURLMIME(s string) (mime string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", false
	}
	head, _, _ := strings.Cut(s, ";")
	parts := strings.Split(head, ":")
	return parts[1], true
}

// EncodeDataURL renders data as a base64 data URL with the given MIME type.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
