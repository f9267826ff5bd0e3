package mail

import (
	"bytes"
	"html/template"
	"time"
)

// InvitationData fills the account-setup invitation templates. SetupURL
// carries the one-time token; the email is the only place the raw token
// ever appears.
type InvitationData struct {
	ClientName string
	SetupURL   string
	ExpiresAt  time.Time
}

// PassphraseData fills the admin-provisioned temporary passphrase templates.
type PassphraseData struct {
	ClientName string
	SignInURL  string
	Passphrase string
}

// DeletionData fills the deletion-scheduled notice with its recovery link.
type DeletionData struct {
	ClientName  string
	RecoveryURL string
	PurgeAfter  time.Time
}

var (
	invitationHTML = template.Must(template.New("invitation_html").Parse(`<html><body>
<h2>Set up your {{.ClientName}} console account</h2>
<p>Hello,</p>
<p>An administrator has created a console account for <strong>{{.ClientName}}</strong>.</p>
<p><a href="{{.SetupURL}}">Complete your account setup</a></p>
<p>This link expires on {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}. If it has
expired, ask your administrator to send a new invitation.</p>
</body></html>`))

	invitationText = template.Must(template.New("invitation_text").Parse(`Set up your {{.ClientName}} console account

Hello,

An administrator has created a console account for {{.ClientName}}.

Complete your account setup: {{.SetupURL}}

This link expires on {{.ExpiresAt.Format "2 Jan 2006 15:04 MST"}}. If it has
expired, ask your administrator to send a new invitation.`))

	passphraseHTML = template.Must(template.New("passphrase_html").Parse(`<html><body>
<h2>Your {{.ClientName}} console account</h2>
<p>Hello,</p>
<p>An administrator has created a console account for <strong>{{.ClientName}}</strong>
with a temporary passphrase:</p>
<p><code>{{.Passphrase}}</code></p>
<p><a href="{{.SignInURL}}">Sign in</a> and you will be asked to choose a new
password straight away.</p>
</body></html>`))

	passphraseText = template.Must(template.New("passphrase_text").Parse(`Your {{.ClientName}} console account

Hello,

An administrator has created a console account for {{.ClientName}} with a
temporary passphrase:

    {{.Passphrase}}

Sign in at {{.SignInURL}} and you will be asked to choose a new password
straight away.`))

	deletionHTML = template.Must(template.New("deletion_html").Parse(`<html><body>
<h2>{{.ClientName}} account scheduled for deletion</h2>
<p>Hello,</p>
<p>The console account for <strong>{{.ClientName}}</strong> has been scheduled
for deletion. Its data will be permanently removed after
{{.PurgeAfter.Format "2 Jan 2006"}}.</p>
<p>If this was a mistake, you can restore the account before then:</p>
<p><a href="{{.RecoveryURL}}">Restore {{.ClientName}}</a></p>
</body></html>`))

	deletionText = template.Must(template.New("deletion_text").Parse(`{{.ClientName}} account scheduled for deletion

Hello,

The console account for {{.ClientName}} has been scheduled for deletion. Its
data will be permanently removed after {{.PurgeAfter.Format "2 Jan 2006"}}.

If this was a mistake, you can restore the account before then:

    {{.RecoveryURL}}`))
)

func render(html, text *template.Template, data any) (htmlBody, textBody string, err error) {
	var hb, tb bytes.Buffer
	if err := html.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := text.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// RenderInvitation produces the subject and bodies for a setup invitation.
func RenderInvitation(data InvitationData) (subject, htmlBody, textBody string, err error) {
	htmlBody, textBody, err = render(invitationHTML, invitationText, data)
	return "Set up your " + data.ClientName + " console account", htmlBody, textBody, err
}

// RenderPassphrase produces the subject and bodies for a temporary passphrase notice.
func RenderPassphrase(data PassphraseData) (subject, htmlBody, textBody string, err error) {
	htmlBody, textBody, err = render(passphraseHTML, passphraseText, data)
	return "Your " + data.ClientName + " console account", htmlBody, textBody, err
}

// RenderDeletion produces the subject and bodies for a deletion-scheduled notice.
func RenderDeletion(data DeletionData) (subject, htmlBody, textBody string, err error) {
	htmlBody, textBody, err = render(deletionHTML, deletionText, data)
	return data.ClientName + " account scheduled for deletion", htmlBody, textBody, err
}
