// Package mailer provides transactional email sending behind a
// provider-agnostic Sender interface.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	texttemplate "text/template"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("mailer: email must have a subject")

	// ErrNoContent indicates no HTML content was provided.
	ErrNoContent = errors.New("mailer: email must have HTML content")

	// ErrSendFailed indicates email delivery failed.
	ErrSendFailed = errors.New("mailer: failed to send email")
)

// Sender is the minimal interface email providers implement.
type Sender interface {
	// Send delivers an email message.
	// The Email must have To, Subject, and HTML already set.
	Send(ctx context.Context, email *Email) error
}

// Tags represents email tags/categories. Values may be presence-only
// (struct{}{}) or strings; provider adapters convert as needed.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully-prepared message ready for sending.
type Email struct {
	Headers     map[string]string
	Tags        Tags
	Subject     string
	HTML        string
	Text        string // plain text alternative
	From        string // override default sender
	ReplyTo     string
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // optional Content-ID for inline attachments
	Content     []byte
}

// Mailer validates and sends emails through a Sender. Subjects may
// contain {{.Variable}} placeholders resolved against SendData.
type Mailer struct {
	sender          Sender
	fallbackSubject string
}

// New creates a Mailer. The fallback subject is used when an email
// has none.
func New(sender Sender, fallbackSubject string) *Mailer {
	return &Mailer{sender: sender, fallbackSubject: fallbackSubject}
}

// Send validates and delivers an email. An empty subject falls back
// to the configured default; subject placeholders are resolved
// against data.
func (m *Mailer) Send(ctx context.Context, email *Email, data any) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.HTML == "" {
		return ErrNoContent
	}

	subject := email.Subject
	if subject == "" {
		subject = m.fallbackSubject
	}
	if subject == "" {
		return ErrNoSubject
	}

	resolved, err := renderSubject(subject, data)
	if err != nil {
		return err
	}
	email.Subject = resolved

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func renderSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
