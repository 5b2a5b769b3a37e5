// Package storage implements the object-access layer: key policy, presigned
// upload/download grants, and server-side verification against the store.
package storage

import (
	"encoding/hex"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// safeChars matches everything outside the safe filename character set.
var safeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const (
	maxNameRootLen = 80
	maxExtLen      = 10
)

// SanitizeFileName strips directory components from name, restricts it to a
// safe character set, and caps its length while preserving a short extension.
func SanitizeFileName(name string) string {
	base := strings.TrimSpace(path.Base(strings.ReplaceAll(name, `\`, "/")))
	if base == "" || base == "." || base == "/" {
		base = "file"
	}

	ext := path.Ext(base)
	root := strings.TrimSuffix(base, ext)

	root = safeChars.ReplaceAllString(root, "_")
	if len(root) > maxNameRootLen {
		root = root[:maxNameRootLen]
	}
	if root == "" {
		root = "file"
	}

	ext = safeChars.ReplaceAllString(ext, "")
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}

	return root + ext
}

// MintKey derives a fresh object key for a file owned by identityID. Every
// minted key is prefixed with the owning identity; the prefix is the
// ownership proof for the raw key/url download path. The random token makes
// keys unguessable and collision-free across identical inputs.
func MintKey(identityID, filename string) string {
	ext := path.Ext(filename)
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	u := uuid.New()
	return identityID + "/" + hex.EncodeToString(u[:]) + ext
}

// OwnedBy reports whether key was minted for identityID, i.e. starts with
// "<identityID>/" followed by an object name. This prefix check is the sole
// authorization mechanism for caller-supplied keys and URLs and must run
// before any storage operation on them.
func OwnedBy(key, identityID string) bool {
	if identityID == "" {
		return false
	}
	prefix := identityID + "/"
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix)
}
