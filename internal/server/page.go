package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"stockdash/internal/dashboard"
	"stockdash/internal/model"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// earliestDate is the first selectable day in the date pickers.
var earliestDate = time.Date(1995, 8, 5, 0, 0, 0, 0, time.UTC)

type pageData struct {
	Title   string
	Prompt  string
	MinDate string
	Today   string
}

func renderPage(w http.ResponseWriter, now time.Time) error {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:   "Stock Dash",
		Prompt:  dashboard.PromptMessage,
		MinDate: earliestDate.Format(model.DateLayout),
		Today:   now.Format(model.DateLayout),
	})
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
