package clip

import (
	"bytes"
	"net/url"
	"os"
)

// stagedImage returns the bytes of a local PNG file referenced by a file://
// URI, or nil when uri is not such a reference.
func stagedImage(uri string) []byte {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return nil
	}
	data, err := os.ReadFile(u.Path)
	if err != nil || !bytes.HasPrefix(data, pngMagic) {
		return nil
	}
	return data
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")
