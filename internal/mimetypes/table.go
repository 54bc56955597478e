// Package mimetypes maps file extensions to media types.
//
// A Table is built once from the builtin entries plus caller overrides and is
// never modified afterwards, so a single instance can be shared by every
// request goroutine without locking.
package mimetypes

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// DefaultType is returned for extensions nobody knows about.
const DefaultType = "application/octet-stream"

var ErrInvalidExtension = errors.New("invalid extension")

// builtinTypes mirrors the usual static-server defaults. .wasm is left out on
// purpose; it arrives through the overrides.
var builtinTypes = map[string]string{
	".avif":  "image/avif",
	".bmp":   "image/bmp",
	".css":   "text/css; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".gif":   "image/gif",
	".gz":    "application/gzip",
	".htm":   "text/html; charset=utf-8",
	".html":  "text/html; charset=utf-8",
	".ico":   "image/vnd.microsoft.icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".map":   "application/json",
	".md":    "text/markdown; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".ttf":   "font/ttf",
	".txt":   "text/plain; charset=utf-8",
	".wav":   "audio/wav",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "text/xml; charset=utf-8",
	".zip":   "application/zip",
}

type Table struct {
	entries map[string]string
}

// New builds a table from the builtin entries with overrides applied on top.
// Override keys are case-insensitive and must start with a dot.
func New(overrides map[string]string) (*Table, error) {
	for ext, typ := range overrides {
		if len(ext) < 2 || ext[0] != '.' || strings.ContainsAny(ext[1:], "./\\") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
		if _, _, err := mime.ParseMediaType(typ); err != nil {
			return nil, fmt.Errorf("media type for %s: %w", ext, err)
		}
	}

	folded := lo.MapKeys(overrides, func(_ string, ext string) string {
		return fold(ext)
	})

	return &Table{entries: lo.Assign(builtinTypes, folded)}, nil
}

// Lookup reports the media type registered for ext. Entries in the table win;
// otherwise the runtime's mime registry is consulted.
func (t *Table) Lookup(ext string) (string, bool) {
	if ext == "" {
		return "", false
	}
	ext = fold(ext)
	if typ, ok := t.entries[ext]; ok {
		return typ, true
	}
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ, true
	}
	return "", false
}

// TypeByExtension is Lookup with DefaultType as the fallback.
func (t *Table) TypeByExtension(ext string) string {
	if typ, ok := t.Lookup(ext); ok {
		return typ
	}
	return DefaultType
}

// TypeByName resolves the media type of a file name or slash-separated path.
func (t *Table) TypeByName(name string) string {
	return t.TypeByExtension(path.Ext(name))
}

// Extensions returns the explicitly registered extensions in sorted order.
func (t *Table) Extensions() []string {
	exts := lo.Keys(t.entries)
	slices.Sort(exts)
	return exts
}

func (t *Table) Len() int {
	return len(t.entries)
}

func fold(ext string) string {
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 0x80 || (c >= 'A' && c <= 'Z') {
			// Caser holds state, so it is created per call instead of shared.
			return cases.Fold().String(ext)
		}
	}
	return ext
}
