package server

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

const (
	indexFile    = "index.html"
	notFoundFile = "404.html"
)

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "405 - Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	name, err := resolvePath(r.URL.Path)
	if err != nil {
		http.Error(w, "400 - Bad Request: invalid path", http.StatusBadRequest)
		return
	}

	info, err := s.root.Stat(name)
	if err != nil {
		s.statError(w, name, err)
		return
	}

	if info.IsDir() {
		// Relative links in an index page only resolve against a trailing slash.
		if !strings.HasSuffix(r.URL.Path, "/") {
			target := (&url.URL{Path: strings.TrimSuffix(name, "/") + "/"}).EscapedPath()
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		name = path.Join(name, indexFile)
		info, err = s.root.Stat(name)
		if err != nil {
			s.statError(w, name, err)
			return
		}
		if info.IsDir() {
			s.notFound(w)
			return
		}
	} else if strings.HasSuffix(r.URL.Path, "/") {
		s.notFound(w)
		return
	}

	if !info.Mode().IsRegular() {
		s.notFound(w)
		return
	}

	s.serveFile(w, r, name, info)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, name string, info fs.FileInfo) {
	f, err := s.root.Open(name)
	if err != nil {
		s.statError(w, name, err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.log.Warn("Failed to close file", "path", name, "error", cerr)
		}
	}()

	header := w.Header()
	header.Set("Content-Type", s.types.TypeByName(name))
	setCacheHeaders(header, name)

	if s.cfg.ETags {
		tag, err := contentETag(f)
		if err != nil {
			s.log.Warn("Failed to hash file", "path", name, "error", err)
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}
		header.Set("ETag", tag)
	}

	content := &trackingReader{ReadSeeker: f}
	http.ServeContent(w, r, name, info.ModTime(), content)
	if content.err != nil {
		s.log.Warn("Response aborted", "path", name, "error", content.err)
	}
}

func (s *Server) statError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		s.notFound(w)
		return
	}
	if errors.Is(err, fs.ErrPermission) {
		http.Error(w, "403 - Forbidden", http.StatusForbidden)
		return
	}
	s.log.Warn("Failed to stat file", "path", name, "error", err)
	http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter) {
	header := w.Header()
	header.Del("ETag")
	header.Set("Cache-Control", "no-store")

	if content, err := afero.ReadFile(s.root, "/"+notFoundFile); err == nil {
		header.Set("Content-Type", s.types.TypeByName(notFoundFile))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(content)
		return
	}
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("404 - Page Not Found"))
}

// trackingReader remembers the first read error so a truncated response can
// be reported after http.ServeContent returns.
type trackingReader struct {
	io.ReadSeeker
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.ReadSeeker.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

