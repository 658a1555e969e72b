// File: pkg/scan/binary.go
package scan

import (
	"bytes"
	"unicode/utf8"
)

// sniffLen is how much of a file is inspected by IsBinary.
const sniffLen = 512

// IsBinary reports whether data looks binary: a NUL byte or more than 30% non-printable
// bytes within the first 512 bytes. Empty data is text.
func IsBinary(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range data {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

// isPrintable accepts printable ASCII, common whitespace and any byte of a multi-byte
// UTF-8 sequence so that non-Latin text is not mistaken for binary.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b >= utf8.RuneSelf
}

// checkText returns ErrBinaryContent or ErrInvalidEncoding when data cannot be copied as text.
func checkText(data []byte) error {
	if IsBinary(data) {
		return ErrBinaryContent
	}
	if !utf8.Valid(data) {
		return ErrInvalidEncoding
	}
	return nil
}
