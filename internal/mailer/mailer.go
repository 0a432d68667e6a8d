// Package mailer sends transactional emails for account and request
// lifecycle events. Sending is best effort: callers fire emails after
// the database write has committed and only log failures.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// Template identifies a transactional email template.
type Template string

const (
	TemplateFormateurValide  Template = "formateur_valide"
	TemplateApprenantValide  Template = "apprenant_valide"
	TemplateCompteRejete     Template = "compte_rejete"
	TemplateCodeRegenere     Template = "code_regenere"
	TemplateCongeDecide      Template = "conge_decide"
	TemplatePermissionDecide Template = "permission_decide"
)

// Message is a fully addressed transactional email.
type Message struct {
	To       string
	ToName   string
	Subject  string
	Template Template
	Data     map[string]interface{}
}

// Mailer is any service that can deliver transactional emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// Healthy reports whether the underlying transport is usable.
	Healthy(ctx context.Context) bool
}

var bodyTemplates = template.Must(template.New("mailer").Parse(`
{{define "formateur_valide"}}Bonjour {{.Prenom}},

Votre compte formateur a été validé par l'administration.
Votre code d'accès : {{.CodeFormateur}}
{{if .AdminMessage}}
Message de l'administration : {{.AdminMessage}}
{{end}}
Connectez-vous sur {{.FrontendURL}} pour commencer.
{{end}}

{{define "apprenant_valide"}}Bonjour {{.Prenom}},

Votre compte a été validé. Vous pouvez maintenant vous connecter sur {{.FrontendURL}}.
{{if .AdminMessage}}
Message de l'administration : {{.AdminMessage}}
{{end}}{{end}}

{{define "compte_rejete"}}Bonjour {{.Prenom}},

Votre demande d'inscription n'a pas été retenue.
{{if .Motif}}Motif : {{.Motif}}
{{end}}{{end}}

{{define "code_regenere"}}Bonjour {{.Prenom}},

Votre code d'accès formateur a été renouvelé.
Nouveau code : {{.CodeFormateur}}

L'ancien code n'est plus valide.
{{end}}

{{define "conge_decide"}}Bonjour {{.Prenom}},

Votre demande de congé du {{.DateDebut}} au {{.DateFin}} a été {{.Decision}}.
{{if .MotifRefus}}Motif : {{.MotifRefus}}
{{end}}{{end}}

{{define "permission_decide"}}Bonjour {{.Prenom}},

Votre demande de permission du {{.DatePermission}} a été {{.Decision}}.
{{if .MotifRefus}}Motif : {{.MotifRefus}}
{{end}}{{end}}
`))

// NewFromConfig selects the SendGrid transport when an API key is
// configured and falls back to the console transport otherwise.
func NewFromConfig(apiKey, fromEmail, fromName string) Mailer {
	if apiKey != "" {
		return NewSendgridMailer(apiKey, fromEmail, fromName)
	}
	return NewConsoleMailer()
}

// RenderBody renders the plain text body for the message template.
func RenderBody(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplates.ExecuteTemplate(&buf, string(msg.Template), msg.Data); err != nil {
		return "", fmt.Errorf("render email template %q: %w", msg.Template, err)
	}
	return buf.String(), nil
}
