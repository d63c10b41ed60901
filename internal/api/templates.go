package api

import (
	"embed"
	"encoding/json"
	"html/template"
	"time"

	"github.com/stepsurvey/steps-survey/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// json embeds a value as a script literal, used for chart specs.
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	},
}

// loadTemplates parses the embedded pages. Template names are file base names.
func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"))
}
