package handler

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gorilla/handlers"
)

// NewStaticHandler serves the built landing page from dir with gzip
// compression.
//
// /privacy resolves to privacy.html when no such file or directory exists.
// Extension-less paths that match nothing fall back to index.html so the
// page's client-side routes load; missing assets stay 404.
func NewStaticHandler(dir string) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %q is not a directory", dir)
	}

	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		full := filepath.Join(dir, filepath.FromSlash(clean))

		if exists(full) {
			fileServer.ServeHTTP(w, r)
			return
		}

		if clean != "/" && isFile(full+".html") {
			http.ServeFile(w, r, full+".html")
			return
		}

		if path.Ext(clean) != "" || !isFile(index) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, index)
	})

	return handlers.CompressHandler(h), nil
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
