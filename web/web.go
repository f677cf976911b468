// Package web carries the embedded HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded views with the shared helper functions.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"humantime": humanize.Time,
		"reltime":   timediff.TimeDiff,
	}).ParseFS(templatesFS, "templates/*.html")
}

// Static returns the embedded static asset tree rooted at static/.
func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
