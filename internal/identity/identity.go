// Package identity derives the logical keys shared by products and their
// image files.
package identity

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DeriveSlug returns the last path segment of a product detail link, e.g.
// "big-bro-burger" for "https://brobar.delivery/product/big-bro-burger".
// Without a usable segment a random token is returned instead.
func DeriveSlug(link string) string {
	if link == "" {
		return RandomToken()
	}
	parts := strings.Split(link, "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return RandomToken()
}

// DeriveBaseName strips hash suffixes and the extension from an image
// filename: "batat-fri.697b8d8a.79514815.jpg" and "batat-fri.jpg" both
// resolve to "batat-fri".
//
// Stored filenames were produced under the assumption that slugs never
// contain a dot, so a name with more than two dot-separated parts keeps
// only its first part. A slug with a literal dot is truncated; existing
// data depends on that, so it stays.
//
// Leading dots do not start an extension: ".jpg" resolves to ".jpg".
func DeriveBaseName(filename string) string {
	parts := strings.Split(filename, ".")
	if len(parts) > 2 {
		return parts[0]
	}
	if !strings.Contains(strings.TrimLeft(filename, "."), ".") {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// RandomToken returns 32 lowercase hex characters.
func RandomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewExternalID returns a short token for external-system correlation.
func NewExternalID() string {
	return uuid.NewString()[:8]
}
