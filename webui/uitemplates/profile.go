package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type ProfileParams struct {
	FullName  string
	Email     string
	Gender    string
	Genders   []string
	ImageURL  string
	UserError string
}

var profileText = `
{{define "title"}}Profile{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/dashboard">Dashboard</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="/profile">Profile</a></li>
{{- end}}

{{define "content"}}
<h1>Profile</h1>

{{if .UserError}}
  <div class="alert alert-danger" role="alert">
    Error: {{.UserError}}
  </div>
{{end}}

{{if .ImageURL}}
<p><img src="{{.ImageURL}}" alt="Profile" width="120" height="120" class="rounded-circle border"></p>
<form method="POST" action="/profile/remove-image">
  <button type="submit" class="btn btn-sm btn-outline-danger mb-3">Remove Image</button>
</form>
{{end}}

<form method="POST" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="full-name" class="form-label">Full Name</label>
    <input type="text" name="full-name" id="full-name" value="{{.FullName}}" class="form-control">
  </div>

  <div class="mb-3">
    <label for="email" class="form-label">Email</label>
    <input type="email" name="email" id="email" value="{{.Email}}" class="form-control" required>
  </div>

  <div class="mb-3">
    <label for="password" class="form-label">New Password (leave blank to keep current)</label>
    <input type="password" name="password" id="password" class="form-control">
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
    <label for="profile-image" class="form-label">Replace Profile Image</label>
    <input type="file" name="profile-image" id="profile-image" accept="image/*" class="form-control">
  </div>

  <button type="submit" class="btn btn-primary">Save</button>
  <a href="/profile" class="btn btn-secondary">Reset</a>
</form>
{{end}}
`

var profileTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(profileText))

func ProfilePage(params *ProfileParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := profileTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
