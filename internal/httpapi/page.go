package httpapi

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed assets/index.html
var assetsFS embed.FS

var indexTmpl = template.Must(template.ParseFS(assetsFS, "assets/index.html"))

// renderIndex serves the single demo page with the task name filled in.
func renderIndex(w http.ResponseWriter, task string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, struct{ Task string }{Task: task}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to render page")
	}
}
