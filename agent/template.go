package agent

import (
	"fmt"
	"strings"
	"text/template"
)

// Render renders a message template against the layered variable
// context. Variables are merged in precedence order, later sources
// overriding earlier ones on key collision:
//
//  1. config fields (snake_case names)
//  2. environment capability template vars
//  3. model capability template vars
//  4. run-scoped extras (task text plus caller-supplied context)
//  5. per-call extras passed to this function
//
// Resolution is strict: referencing an undefined variable fails the
// render. Nothing is cached; every call re-renders.
func (a *Agent) Render(tmpl string, extra map[string]any) (string, error) {
	vars := a.templateContext()
	for k, v := range extra {
		vars[k] = v
	}

	t, err := template.New("message").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse message template: %w", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render message template: %w", err)
	}
	return sb.String(), nil
}

// templateContext builds the merged variable map for one render.
func (a *Agent) templateContext() map[string]any {
	vars := a.config.templateVars()
	for k, v := range a.env.TemplateVars() {
		vars[k] = v
	}
	for k, v := range a.model.TemplateVars() {
		vars[k] = v
	}
	for k, v := range a.extraVars {
		vars[k] = v
	}
	return vars
}
