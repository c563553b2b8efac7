// Package input reads source log files, transparently decoding the
// UTF-16 output some Windows export tools produce.
package input

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotFound is returned when the source path does not exist.
var ErrNotFound = errors.New("input file not found")

// ReadFile reads path and returns its content as UTF-8. A UTF-16LE,
// UTF-16BE, or UTF-8 byte order mark is honored and stripped; content
// without a BOM is assumed to be UTF-8 already.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	// UTF-16LE is the encoding standard on Windows; exported logs often
	// carry a BOM. BOMOverride falls back to plain UTF-8 when none is
	// present.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	// Windows tooling writes CRLF; normalize like a text-mode read so
	// line-oriented extraction sees plain newlines.
	return strings.ReplaceAll(string(decoded), "\r\n", "\n"), nil
}
