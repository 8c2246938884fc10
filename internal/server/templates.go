package server

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/calfront/calfront/internal/log"
)

//go:embed templates/index.html
var indexTemplateHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateHTML))

// IndexPageData represents the data for the main page
type IndexPageData struct {
	Authenticated bool
	CalendarName  string
	EventTitle    string
	Notice        string
	NoticeKind    string // "success" or "error"
}

func renderIndex(w http.ResponseWriter, data IndexPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.LogError("Failed to render index page: %v", err)
	}
}
