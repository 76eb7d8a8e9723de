// Package encoding provides text encoding helpers for mesh file formats.
//
// Older DAT files and texture names were written on classic Mac OS and are
// stored in Mac Roman. Newer files are UTF-8.
package encoding

import (
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// MacRomanToUTF8 converts Mac Roman encoded bytes to a UTF-8 string.
// Every byte value has a Mac Roman mapping, so this never fails.
func MacRomanToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.Macintosh.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// Text decodes a string field read from a file. Valid UTF-8 is returned
// unchanged; anything else is treated as Mac Roman.
func Text(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return MacRomanToUTF8(data)
}

// IsASCII reports whether s only contains 7-bit characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// NormalizePath converts a texture reference to forward slashes and cleans
// it. Case is preserved since texture lookups are case sensitive on most
// systems.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
