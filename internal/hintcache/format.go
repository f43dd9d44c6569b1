package hintcache

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the on-disk encoding of the cache.
type Format string

const (
	// FormatJSON is the default: a flat JSON object, sorted keys, HTML left unescaped.
	FormatJSON Format = "json"
	// FormatMsgpack writes a MessagePack map for runtimes without a JSON parser.
	FormatMsgpack Format = "msgpack"
)

const (
	DefaultJSONFile    = "hints.json"
	DefaultMsgpackFile = "hints.msgpack"
)

// ParseFormat converts a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("invalid cache format %q (expected json|msgpack)", s)
	}
}

// DefaultFile returns the file name used when none is configured.
func (f Format) DefaultFile() string {
	if f == FormatMsgpack {
		return DefaultMsgpackFile
	}
	return DefaultJSONFile
}

// Encode writes c to w in format f. Output is deterministic for equal caches.
func Encode(w io.Writer, c Cache, f Format) error {
	if c == nil {
		c = Cache{}
	}
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(map[string]string(c))
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(map[string]string(c))
	default:
		return fmt.Errorf("unknown cache format %q", f)
	}
}
