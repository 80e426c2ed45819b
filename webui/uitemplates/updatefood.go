package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type UpdateFoodParams struct {
	FoodID    string
	FoodName  string
	Meal      string
	Meals     []string
	FoodDate  string
	ImageURL  string
	SelfLink  string
	UserError string
}

var updateFoodText = `
{{define "title"}}Edit Food{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/dashboard">Dashboard</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="{{.SelfLink}}">Edit Food</a></li>
{{- end}}

{{define "content"}}
<h1>Edit Food</h1>

{{if .UserError}}
  <div class="alert alert-danger" role="alert">
    Error: {{.UserError}}
  </div>
{{end}}

{{if .ImageURL}}
<p><img src="{{.ImageURL}}" alt="{{.FoodName}}" width="120" height="120" class="rounded border"></p>
{{end}}

<form method="POST" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="food-name" class="form-label">Food Name</label>
    <input type="text" name="food-name" id="food-name" value="{{.FoodName}}" class="form-control" required>
  </div>

  <div class="mb-3">
    <label for="meal" class="form-label">Meal</label>
    {{$selected := .Meal}}
    <select name="meal" id="meal" class="form-select" required>
      <option value="" {{if not $selected}}selected{{end}} disabled>Choose a meal</option>
      {{range .Meals}}
      <option value="{{.}}" {{if eq . $selected}}selected{{end}}>{{.}}</option>
      {{end}}
    </select>
  </div>

  <div class="mb-3">
    <label for="food-date" class="form-label">Date</label>
    <input type="date" name="food-date" id="food-date" value="{{.FoodDate}}" class="form-control" required>
  </div>

  <div class="mb-3">
    <label for="food-image" class="form-label">Replace Food Image</label>
    <input type="file" name="food-image" id="food-image" accept="image/*" class="form-control">
  </div>

  <button type="submit" class="btn btn-primary">Save</button>
  <a href="{{.SelfLink}}" class="btn btn-secondary">Reset</a>
</form>
{{end}}
`

var updateFoodTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(updateFoodText))

func UpdateFoodPage(params *UpdateFoodParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := updateFoodTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
