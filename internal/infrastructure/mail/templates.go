package mail

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/St1cky1/task-portal/internal/entity"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[string]emailTemplate{
	entity.TemplateMention: mustTemplate(entity.TemplateMention,
		`{{.author_name}} mentioned you in a comment`,
		`Hi {{.recipient_name}},

{{.author_name}} mentioned you in a comment on a task.

Open the task: {{.task_url}}

You are receiving this because you were @mentioned.
`),
	entity.TemplatePasswordReset: mustTemplate(entity.TemplatePasswordReset,
		`Reset your Task Portal password`,
		`Hi {{.recipient_name}},

We received a request to reset your password. Use the link below to choose a new one:

{{.reset_link}}

If you did not ask for this, you can ignore this email.
`),
}

// Render fills the named template with params.
func Render(name string, params map[string]string) (subject, body string, err error) {
	tpl, ok := templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	var sb strings.Builder
	if err := tpl.subject.Execute(&sb, params); err != nil {
		return "", "", fmt.Errorf("rendering %s subject: %w", name, err)
	}
	subject = strings.TrimSpace(sb.String())

	sb.Reset()
	if err := tpl.body.Execute(&sb, params); err != nil {
		return "", "", fmt.Errorf("rendering %s body: %w", name, err)
	}
	return subject, sb.String(), nil
}
