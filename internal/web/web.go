// Package web serves the chat page and its assets from the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed index.html static
var content embed.FS

// Index serves the chat page.
func Index(w http.ResponseWriter, r *http.Request) {
	page, err := content.ReadFile("index.html")
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
