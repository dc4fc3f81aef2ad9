package vision

import (
	"bytes"
	"encoding/hex"
)

var signatures = []struct {
	magic    []byte
	mimeType string
}{
	{mustHex("ffd8ffe0"), "image/jpeg"},
	{mustHex("89504e47"), "image/png"},
	{mustHex("47494638"), "image/gif"},
	{mustHex("52494646"), "image/webp"},
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// DetectMIME sniffs the media type from the first four bytes. Unknown
// signatures fall back to image/jpeg.
func DetectMIME(data []byte) string {
	for _, s := range signatures {
		if bytes.HasPrefix(data, s.magic) {
			return s.mimeType
		}
	}
	return "image/jpeg"
}
