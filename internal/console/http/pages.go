package http

import (
	"html/template"
	"net/http"

	"github.com/chatforge/console/pkg/slogx"
)

// The console pages are thin server-rendered shells; the heavy lifting
// happens against the /v1 JSON API from a small amount of page script.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Console</title>
</head>
<body data-page="{{.Page}}">
  <main>
    <h1>{{.Title}}</h1>
    <div id="app"></div>
  </main>
  <script src="/static/console.js" defer></script>
</body>
</html>`))

type pageData struct {
	Title string
	Page  string
}

func servePage(title, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, pageData{Title: title, Page: page}); err != nil {
			slogx.FromContext(r.Context()).Error("failed to render page", "page", page, "err", err)
		}
	}
}
