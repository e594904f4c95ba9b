// =============================================================================
// txtmerge - Decoding Reader
// =============================================================================
//
// This module loads a text file into an ordered sequence of lines. Export
// files arrive in one of two encodings, so reading is a two-attempt decode:
//
//   1. Strict UTF-8. Any invalid byte sequence rejects the attempt.
//   2. A single-byte fallback charmap (ISO-8859-1 by default). Every byte maps
//      to some character, so this attempt cannot fail.
//
// The outcome is a tagged Result naming the encoding that was used. Decoding
// never returns an error; only I/O failures do, as *types.IOError.
//
// LINE HANDLING:
//   - A leading UTF-8 byte order mark is dropped.
//   - "\r\n" and lone "\r" are normalised to "\n".
//   - Every line keeps its "\n" terminator; the last line may have none.
//
// =============================================================================

package decoder

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/txtmerge/internal/types"
)

// EncodingUTF8 is the name reported when the strict attempt succeeds.
const EncodingUTF8 = "UTF-8"

// DefaultFallback is the fallback encoding used when none is configured.
const DefaultFallback = "ISO-8859-1"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbacks lists the single-byte encodings accepted as a fallback.
var fallbacks = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"iso8859-15":   charmap.ISO8859_15,
	"latin9":       charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the tagged outcome of decoding one file.
type Result struct {
	// Path is the file that was read. Empty for in-memory decodes.
	Path string

	// Lines are the decoded lines in file order.
	Lines []types.Line

	// Encoding names the encoding that produced Lines.
	Encoding string

	// FellBack is true when strict UTF-8 failed and the fallback was used.
	FellBack bool
}

// Text returns the decoded content as a single string.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "")
}

// =============================================================================
// READER
// =============================================================================

// Reader decodes files with strict UTF-8 and a configured fallback charmap.
// A Reader is safe for concurrent use.
type Reader struct {
	fallbackName string
	fallback     *charmap.Charmap
}

// New returns a Reader using the named fallback encoding.
//
// PARAMETERS:
//   - fallback: "ISO-8859-1", "ISO-8859-15" or "Windows-1252" (case-insensitive,
//     common aliases accepted). Empty selects ISO-8859-1.
//
// RETURNS:
//   - The Reader, or an error naming the unsupported encoding.
func New(fallback string) (*Reader, error) {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}
	cm, ok := fallbacks[strings.ToLower(strings.TrimSpace(fallback))]
	if !ok {
		return nil, fmt.Errorf("unsupported fallback encoding %q", fallback)
	}
	return &Reader{fallbackName: cm.String(), fallback: cm}, nil
}

// SupportedFallback reports whether name is accepted by New.
func SupportedFallback(name string) bool {
	_, ok := fallbacks[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Default returns a Reader with the ISO-8859-1 fallback.
func Default() *Reader {
	return &Reader{fallbackName: charmap.ISO8859_1.String(), fallback: charmap.ISO8859_1}
}

// ReadFile reads and decodes path.
//
// RETURNS:
//   - The decoded Result.
//   - A *types.IOError if the file cannot be read. Decoding never fails.
func (r *Reader) ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.IOError{Op: "read", Path: path, Err: err}
	}
	res := r.Decode(data)
	res.Path = path
	return &res, nil
}

// ReadFile reads path with the default ISO-8859-1 fallback.
func ReadFile(path string) (*Result, error) {
	return Default().ReadFile(path)
}

// Decode converts raw bytes into lines. It never fails.
func (r *Reader) Decode(data []byte) Result {
	if text, ok := decodeStrict(data); ok {
		return Result{Lines: SplitLines(text), Encoding: EncodingUTF8}
	}
	return Result{
		Lines:    SplitLines(r.decodeFallback(data)),
		Encoding: r.fallbackName,
		FellBack: true,
	}
}

// decodeStrict validates data as UTF-8 without substituting anything.
func decodeStrict(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, utf8BOM)
	out, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// decodeFallback maps every byte through the fallback charmap. Bytes the
// charmap leaves undefined become U+FFFD.
func (r *Reader) decodeFallback(data []byte) string {
	out, err := r.fallback.NewDecoder().Bytes(data)
	if err == nil {
		return string(out)
	}
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(r.fallback.DecodeByte(c))
	}
	return b.String()
}

// SplitLines normalises line endings to "\n" and splits text after every
// newline. Terminators are kept. Empty input yields no lines.
func SplitLines(text string) []types.Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
