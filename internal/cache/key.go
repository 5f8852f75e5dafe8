package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"platzhalter/internal/request"
)

// keyVersion tags every key with the renderer output generation. Bump it
// when rendering changes for identical parameters so stale entries are
// retired instead of served.
const keyVersion = "v1"

// Normalize maps a parsed request to its canonical cache key. The field
// order is fixed and every pixel-affecting field appears exactly once;
// the label is query-escaped so it cannot forge the separator.
func Normalize(img request.Image) string {
	var b strings.Builder
	b.Grow(64)

	fmt.Fprintf(&b, "%s|%dx%d|%s|bg=%s|fg=%s", keyVersion, img.Width, img.Height, img.Format, img.Background.Hex(), img.Foreground.Hex())
	if img.BorderWidth > 0 {
		fmt.Fprintf(&b, "|br=%s:%d", img.BorderColor.Hex(), img.BorderWidth)
	} else {
		b.WriteString("|br=-")
	}
	b.WriteString("|label=")
	b.WriteString(url.QueryEscape(img.Label))

	return b.String()
}

// HashKey returns the sha256 hex digest of a canonical key, used where a
// fixed-length filesystem-safe name is needed.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
