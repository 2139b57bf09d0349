package markup

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns a stable hex digest of parts, suitable for the checksum marker
// attribute. Parts are separated so ("ab", "c") and ("a", "bc") differ.
func Checksum(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
