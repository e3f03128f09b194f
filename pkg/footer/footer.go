package footer

import (
	"bytes"
	"html/template"
)

// Link describes a navigation entry displayed inside the footer.
type Link struct {
	Label string
	URL   string
}

// Config captures the markup hooks required to render the footer.
type Config struct {
	ElementID   string
	BaseClass   string
	InnerClass  string
	PrefixClass string
	PrefixText  string
	LinkClass   string
	Links       []Link
}

var (
	footerTemplate = template.Must(template.New("footer").Option("missingkey=error").Parse(`<footer id="{{.ElementID}}" class="{{.BaseClass}}">
  <div class="{{.InnerClass}}">
    {{if .PrefixText}}<span class="{{.PrefixClass}}">{{.PrefixText}}</span>{{end}}
    {{range .Links}}<a class="{{$.LinkClass}}" href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Label}}</a>
    {{end}}
  </div>
</footer>`))
)

// Render returns the footer HTML for the provided configuration.
func Render(config Config) (template.HTML, error) {
	var buffer bytes.Buffer
	if err := footerTemplate.Execute(&buffer, config); err != nil {
		return "", err
	}
	return template.HTML(buffer.String()), nil
}
