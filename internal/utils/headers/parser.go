package headers

import (
	"fmt"
	"net/textproto"
	"strings"
)

// ParseHeaders turns "Key: Value" strings into a header map with canonical
// keys. Later entries for the same key win. An entry without a colon or with
// an empty key is an error.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		m[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(value)
	}
	return m, nil
}
