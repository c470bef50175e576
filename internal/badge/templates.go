package badge

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.svg.tmpl
var templateFiles embed.FS

// Templates are text templates, not html ones: they inject raw bar markup
// and CSS, and text fields arrive pre-escaped from the builder.
var templates = template.Must(template.New("badge").ParseFS(templateFiles, "templates/*.svg.tmpl"))

// RenderSVG executes the theme's template over the rendering parameters.
// Unknown themes render with the default template.
func RenderSVG(r *Rendering) (string, error) {
	name := fmt.Sprintf("spotify.%s.svg.tmpl", r.Theme)

	tmpl := templates.Lookup(name)
	if tmpl == nil {
		tmpl = templates.Lookup("spotify.default.svg.tmpl")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render badge template: %w", err)
	}

	return buf.String(), nil
}
