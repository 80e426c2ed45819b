package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type DashboardParams struct {
	ActiveUser ActiveUserParams

	FullName string
	ImageURL string

	SearchTerm string

	Foods []DashboardFood

	// LoadError is set when one of the two independent loads (user record,
	// food list) failed; the page still renders with whatever was obtained.
	LoadError string
}

type DashboardFood struct {
	Date           string
	Name           string
	Meal           string
	ImageURL       string
	UpdateFoodLink string
	DeleteFoodLink string
}

var dashboardText = `
{{define "title"}}Dashboard{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="/dashboard">Dashboard</a></li>
{{- end}}

{{define "content"}}
<div class="d-flex justify-content-between align-items-center">
  <h1>Dashboard</h1>
  <div>
    {{if .ImageURL}}<img src="{{.ImageURL}}" alt="Profile" width="56" height="56" class="rounded-circle border">{{end}}
    <a href="/profile" class="btn btn-outline-primary">{{if .FullName}}{{.FullName}}{{else}}Profile{{end}}</a>
    <a href="/log-out" class="btn btn-outline-secondary">Log Out</a>
  </div>
</div>

{{if .LoadError}}
  <div class="alert alert-warning" role="alert">
    {{.LoadError}}
  </div>
{{end}}

<form method="GET" class="row g-2 mt-3 mb-3">
  <div class="col-auto">
    <input type="text" name="q" value="{{.SearchTerm}}" placeholder="Search food name..." class="form-control">
  </div>
  <div class="col-auto">
    <button type="submit" class="btn btn-secondary">Search</button>
  </div>
  <div class="col-auto ms-auto">
    <a href="/add-food" class="btn btn-primary">Add Food</a>
  </div>
</form>

<table class="table">
  <thead>
    <tr>
      <th scope="col">Date</th>
      <th scope="col">Image</th>
      <th scope="col">Food</th>
      <th scope="col">Meal</th>
      <th scope="col"></th>
    </tr>
  </thead>
  <tbody class="table-group-divider">
  {{range .Foods}}
    <tr>
      <td>{{.Date}}</td>
      <td>{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}" width="50" height="50" class="rounded">{{end}}</td>
      <td>{{.Name}}</td>
      <td>{{.Meal}}</td>
      <td>
        <a href="{{.UpdateFoodLink}}" class="btn btn-sm btn-warning">Edit</a>
        <a href="{{.DeleteFoodLink}}" class="btn btn-sm btn-danger">Delete</a>
      </td>
    </tr>
  {{else}}
    <tr>
      <td colspan="5">No entries yet. Add your first meal.</td>
    </tr>
  {{end}}
  </tbody>
</table>
{{end}}
`

var dashboardTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(dashboardText))

func DashboardPage(params *DashboardParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := dashboardTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
