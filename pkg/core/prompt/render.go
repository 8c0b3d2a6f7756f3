package prompt

import (
	"bytes"
	"text/template"

	"aegis/pkg/core/apperr"
)

// RenderUser executes rec's user prompt template against ctx, mirroring
// the teacher's RenderUserPrompt/text/template usage.
func RenderUser(rec *Record, ctx *Context) (string, error) {
	if rec.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(rec.Name).Parse(rec.UserPromptTmpl)
	if err != nil {
		return "", apperr.Content("prompt.render", "failed to parse user prompt template: "+rec.Name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", apperr.Content("prompt.render", "failed to execute user prompt template: "+rec.Name, err)
	}
	return buf.String(), nil
}
