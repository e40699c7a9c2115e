package choices

import (
	"bytes"
	"html/template"
	"sort"

	"github.com/rotisserie/eris"
)

var selectTmpl = template.Must(template.New("select").Parse(
	`{{if .Label}}<label for="id_{{.Name}}">{{.Label}}</label>
{{end}}<select name="{{.Name}}" id="id_{{.Name}}"{{range .Attrs}} {{.Key}}="{{.Value}}"{{end}}{{if .Required}} required{{end}}>
{{- range .Options}}
  <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
{{- if .HelpText}}
<span class="helptext" id="id_{{.Name}}_helptext">{{.HelpText}}</span>
{{- end}}`))

type renderAttr struct{ Key, Value string }

type renderOption struct {
	Choice
	Selected bool
}

// Render draws the field as an HTML <select>, preceded by a <label> and
// followed by the help text when those options are set. Attributes are
// emitted in name order; the option whose value equals selected is marked
// selected.
func (f *Field) Render(name, selected string) (template.HTML, error) {
	attrs := make([]renderAttr, 0, len(f.opts.Attrs))
	for k, v := range f.opts.Attrs {
		attrs = append(attrs, renderAttr{Key: k, Value: v})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })

	options := make([]renderOption, len(f.choices))
	for i, c := range f.choices {
		options[i] = renderOption{Choice: c, Selected: c.Value == selected}
	}

	var buf bytes.Buffer
	err := selectTmpl.Execute(&buf, struct {
		Name     string
		Label    string
		HelpText string
		Attrs    []renderAttr
		Required bool
		Options  []renderOption
	}{name, f.opts.Label, f.opts.HelpText, attrs, f.opts.Required, options})
	if err != nil {
		return "", eris.Wrapf(err, "choices: render %s", name)
	}
	return template.HTML(buf.String()), nil
}
