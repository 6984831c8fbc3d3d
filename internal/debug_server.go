package internal

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one decoded store entry rendered by the inspector page.
type InspectRow struct {
	Key    string
	Type   string
	At     string
	Name   string
	To     string
	Detail string
}

// RowSource returns the rows stored under prefix.
type RowSource func(prefix string) ([]InspectRow, error)

type PageData struct {
	Prefix string
	Items  []InspectRow
	Error  string
}

// NewInspectHandler serves a read-only HTML view of the store.
// The prefix query parameter narrows the scan.
func NewInspectHandler(source RowSource) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Prefix: r.URL.Query().Get("prefix")}
		items, err := source(data.Prefix)
		if err != nil {
			data.Error = err.Error()
		}
		data.Items = items

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		_ = tmpl.Execute(w, data)
	})
}
