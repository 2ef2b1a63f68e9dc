// Package mail renders and delivers transactional email.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

//go:embed templates/*.html
var templates embed.FS

var confirmationTmpl = template.Must(template.ParseFS(templates, "templates/confirmation.html"))

// ConfirmationSubject is the subject line of verification mail.
const ConfirmationSubject = "Verify your email address"

// Message is a single outgoing HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationURL builds the link a user follows to verify their email.
func VerificationURL(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
}

// RenderConfirmation renders the verification email body.
func RenderConfirmation(name, verificationURL string) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		Name string
		URL  string
	}{
		Name: name,
		URL:  verificationURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render confirmation email: %w", err)
	}
	return buf.String(), nil
}
