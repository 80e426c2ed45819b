package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type RegisterParams struct {
	FullName  string
	Email     string
	Gender    string
	Genders   []string
	UserError string
}

var registerText = `
{{define "title"}}Register{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="/register">Register</a></li>
{{- end}}

{{define "content"}}
<h1>Register</h1>

{{if .UserError}}
  <div class="alert alert-danger" role="alert">
    Error: {{.UserError}}
  </div>
{{end}}

<form method="POST" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="full-name" class="form-label">Full Name</label>
    <input type="text" name="full-name" id="full-name" value="{{.FullName}}" class="form-control" required>
  </div>

  <div class="mb-3">
    <label for="email" class="form-label">Email</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>

  <div class="mb-3">
    <label for="password" class="form-label">Password</label>
    <input type="password" name="password" id="password" class="form-control" required>
  </div>

  <div class="mb-3">
    <label class="form-label">Gender</label>
    {{$selected := .Gender}}
    {{range .Genders}}
    <div class="form-check">
      <input class="form-check-input" type="radio" name="gender" id="gender-{{.}}" value="{{.}}" {{if eq . $selected}}checked{{end}}>
      <label class="form-check-label" for="gender-{{.}}">{{.}}</label>
    </div>
    {{end}}
  </div>

  <div class="mb-3">
    <label for="profile-image" class="form-label">Profile Image</label>
    <input type="file" name="profile-image" id="profile-image" accept="image/*" class="form-control">
  </div>

  <button type="submit" class="btn btn-primary">Register</button>
  <a href="/register" class="btn btn-secondary">Reset</a>
</form>

<p class="mt-3">Already have an account? <a href="/log-in">Log In</a></p>
{{end}}
`

var registerTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(registerText))

func RegisterPage(params *RegisterParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := registerTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
