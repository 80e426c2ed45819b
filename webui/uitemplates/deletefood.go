package uitemplates

import (
	"bytes"
	"fmt"
	"html/template"
)

type DeleteFoodParams struct {
	FoodID   string
	FoodName string
	SelfLink string
}

var deleteFoodText = `
{{define "title"}}Delete Food{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/dashboard">Dashboard</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="{{.SelfLink}}">Delete Food</a></li>
{{- end}}

{{define "content"}}
<h1>Delete Food</h1>

<p>Are you sure you want to delete "{{.FoodName}}"?</p>

<form method="POST">
  <button type="submit" class="btn btn-danger">Delete</button>
  <a href="/dashboard" class="btn btn-secondary">Cancel</a>
</form>
{{end}}
`

var deleteFoodTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(deleteFoodText))

func DeleteFoodPage(params *DeleteFoodParams) ([]byte, error) {
	b := bytes.Buffer{}
	if err := deleteFoodTemplate.Execute(&b, params); err != nil {
		return nil, fmt.Errorf("while executing template: %w", err)
	}
	return b.Bytes(), nil
}
