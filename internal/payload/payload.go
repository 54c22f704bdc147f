// Package payload classifies the content strings accepted by a clipboard
// write. A content string is one of three kinds:
//
//	content://... or file://...      — a reference to existing content
//	data:image/<subtype>;base64,...  — an inline base64 image
//	anything else                    — literal plain text
package payload

import "strings"

// Kind identifies what a content string represents.
type Kind int

const (
	KindText Kind = iota
	KindReference
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

var referencePrefixes = []string{"content://", "file://"}

const imagePrefix = "data:image/"

// Payload is a classified content string.
type Payload struct {
	Kind Kind
	Raw  string
}

// Classify returns the payload kind of content. The first matching rule
// wins: reference prefixes, then the data-URL image prefix, then text.
func Classify(content string) Payload {
	switch {
	case IsReference(content):
		return Payload{Kind: KindReference, Raw: content}
	case strings.HasPrefix(content, imagePrefix):
		return Payload{Kind: KindImage, Raw: content}
	default:
		return Payload{Kind: KindText, Raw: content}
	}
}

// IsReference reports whether s starts with a content:// or file:// scheme.
func IsReference(s string) bool {
	for _, p := range referencePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
