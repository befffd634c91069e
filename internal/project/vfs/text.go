package vfs

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrBinary is returned by DecodeText for content that is not text.
var ErrBinary = errors.New("binary content")

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a UTF-8 byte order mark.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, bomUTF8)
}

// IsBinary reports whether content looks binary: a NUL byte or more than
// 10% control characters within the first 8KB.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content
	if len(sample) > 8192 {
		sample = sample[:8192]
	}

	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > 0.1
}

// DecodeText converts file content to a string. Invalid UTF-8 sequences are
// replaced with U+FFFD; binary content is rejected.
func DecodeText(content []byte) (string, error) {
	content = StripBOM(content)
	if IsBinary(content) {
		return "", ErrBinary
	}
	if utf8.Valid(content) {
		return string(content), nil
	}
	return string(bytes.ToValidUTF8(content, []byte("�"))), nil
}
