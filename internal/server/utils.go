package server

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

var (
	ErrPathTraversal = errors.New("path traversal attempt detected")
	ErrInvalidPath   = errors.New("invalid path")
)

// resolvePath turns a request path into a clean, slash-separated name rooted
// at "/". Any ".." segment is rejected outright rather than clamped, and both
// slash kinds count as separators so Windows-style paths are caught too.
func resolvePath(urlPath string) (string, error) {
	if containsDotDot(urlPath) {
		return "", ErrPathTraversal
	}
	if strings.IndexByte(urlPath, 0) >= 0 {
		return "", ErrInvalidPath
	}

	return path.Clean("/" + urlPath), nil
}

func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(v, isSlashRune) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }

// setCacheHeaders picks a caching policy from the file name. Content-hashed
// assets never change, HTML must always be revalidated, and everything else
// gets a short TTL.
func setCacheHeaders(h http.Header, name string) {
	filename := path.Base(name)
	switch {
	case isHashedAsset(filename):
		h.Set("Cache-Control", "public, max-age=31536000, immutable")
	case strings.HasSuffix(strings.ToLower(filename), ".html"):
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
	default:
		h.Set("Cache-Control", "public, max-age=60")
	}
}

// isHashedAsset checks if filename contains a content hash (e.g., layout.a1b2c3d4.css)
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	hashPart := parts[len(parts)-2]
	if len(hashPart) < 8 || len(hashPart) > 12 {
		return false
	}
	for _, c := range hashPart {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
