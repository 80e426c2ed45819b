package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type LogInParams struct {
	Email     string
	UserError string
}

var logInText = `{{define "title"}}Log In{{end}}
{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="/log-in">Log In</a></li>
{{- end}}

{{define "content"}}
<h1>Log In</h1>

{{if .UserError}}
  <div class="alert alert-danger" role="alert">
    Error: {{.UserError}}
  </div>
{{end}}

<form method="POST">
  <div class="mb-3">
    <label for="email" class="form-label">Email</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>
  <div class="mb-3">
    <label for="password" class="form-label">Password</label>
    <input type="password" name="password" id="password" class="form-control" required>
  </div>
  <button type="submit" class="btn btn-primary">Log In</button>
</form>

<p class="mt-3">No account yet? <a href="/register">Register</a></p>
{{end}}
`

var logInTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(logInText))

func LogInPage(params *LogInParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := logInTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
