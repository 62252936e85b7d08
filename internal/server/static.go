package server

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// StaticPageHandler serves one of the embedded dashboard pages.
func StaticPageHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := staticFS.ReadFile("static/" + name)
		if err != nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}
