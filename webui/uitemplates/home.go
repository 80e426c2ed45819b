package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type HomeParams struct {
	ActiveUser ActiveUserParams
}

var homeText = `{{define "title"}}Home{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item active" aria-current="page">Home</li>
{{- end}}

{{define "content"}}
<h1>Welcome to FoodTracker</h1>
<p>Track your meal!</p>

{{if .ActiveUser.LoggedIn}}
<p>You are logged in, {{.ActiveUser.Email}}.</p>
<p><a href="/dashboard" class="btn btn-primary">Dashboard</a></p>
{{else}}
<p>
  <a href="/log-in" class="btn btn-primary">Log In</a>
  <a href="/register" class="btn btn-secondary">Register</a>
</p>
{{end}}
{{end}}
`

var homeTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(homeText))

func HomePage(params *HomeParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := homeTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
