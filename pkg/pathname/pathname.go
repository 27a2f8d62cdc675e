// Package pathname normalizes asset paths referenced by terrain tiles.
package pathname

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Normalize converts a path to its canonical form: forward slashes,
// spaces replaced by underscores, ASCII letters lowered. Other characters
// are kept byte for byte, so the length never changes.
func Normalize(path string) string {
	b := []byte(path)
	for i, c := range b {
		switch {
		case c == '\\':
			b[i] = '/'
		case c == ' ':
			b[i] = '_'
		case 'A' <= c && c <= 'Z':
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// FileName strips every directory component from path.
// Both separators are recognized since client paths use backslashes.
func FileName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// StripAll returns the file names of paths in the same order.
// Duplicates are kept so indices into the result match indices into paths.
func StripAll(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = FileName(p)
	}
	return out
}

// Decode converts a raw name from a tile file into a UTF-8 string.
// Valid UTF-8 is returned unchanged, anything else is treated as Windows-1252.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		// Return as-is if decoding fails
		return string(data)
	}
	return string(result)
}

// Encode converts a UTF-8 name into Windows-1252 bytes for writing tile files.
// Returns the original bytes if the name cannot be represented.
func Encode(s string) []byte {
	result, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
