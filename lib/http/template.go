package http

import (
	"embed"
	"html/template"

	"github.com/pkg/errors"
)

// Assets holds the embedded filesystem for the directory listing template
//
//go:embed templates
var Assets embed.FS

// GetTemplate returns the HTML template for directory listings
func GetTemplate() (*template.Template, error) {
	data, err := Assets.ReadFile("templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read template")
	}

	tpl, err := template.New("index").Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse template")
	}

	return tpl, nil
}
