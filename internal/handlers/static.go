package handlers

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// StaticHandler serves stored files on the public, unauthenticated surface.
// Anyone holding a public URL can fetch the file; the stored name's random
// component is what keeps URLs unguessable. Everything else is hidden:
// directories, dot-prefixed entries (in-flight uploads), and traversal
// attempts all answer with a plain 404, never a JSON envelope or a listing.
func StaticHandler(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel, err := url.PathUnescape(chi.URLParam(r, "*"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		// Rooted clean: "a/../../etc/passwd" collapses to "/etc/passwd"
		// under the root, never above it.
		rel = path.Clean("/" + rel)
		if hasDotSegment(rel) {
			http.NotFound(w, r)
			return
		}

		abs := filepath.Join(root, filepath.FromSlash(rel))
		f, err := os.Open(abs)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil || fi.IsDir() {
			http.NotFound(w, r)
			return
		}

		// ServeContent rather than ServeFile: ServeFile answers request
		// paths containing ".." with a bare 400 before any routing logic
		// runs, and the public surface must stay uniformly 404.
		http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	}
}

// hasDotSegment reports whether any path segment starts with a dot.
func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
