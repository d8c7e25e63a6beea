package mailer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/mailer"
)

type captureSender struct {
	sent []*mailer.Email
	err  error
}

func (c *captureSender) Send(_ context.Context, email *mailer.Email) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, email)
	return nil
}

func TestMailerSend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("delivers valid email", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, "Notification")

		err := m.Send(ctx, &mailer.Email{
			To:      []string{"user@example.com"},
			Subject: "Welcome",
			HTML:    "<p>Hi</p>",
		}, nil)
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		require.Equal(t, "Welcome", sender.sent[0].Subject)
	})

	t.Run("resolves subject placeholders", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, "Notification")

		err := m.Send(ctx, &mailer.Email{
			To:      []string{"user@example.com"},
			Subject: "Hello {{.Name}}",
			HTML:    "<p>Hi</p>",
		}, map[string]string{"Name": "Alice"})
		require.NoError(t, err)
		require.Equal(t, "Hello Alice", sender.sent[0].Subject)
	})

	t.Run("falls back to default subject", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := mailer.New(sender, "Notification")

		err := m.Send(ctx, &mailer.Email{
			To:   []string{"user@example.com"},
			HTML: "<p>Hi</p>",
		}, nil)
		require.NoError(t, err)
		require.Equal(t, "Notification", sender.sent[0].Subject)
	})

	t.Run("rejects incomplete emails", func(t *testing.T) {
		t.Parallel()

		m := mailer.New(&captureSender{}, "")

		err := m.Send(ctx, &mailer.Email{HTML: "<p>Hi</p>"}, nil)
		require.ErrorIs(t, err, mailer.ErrNoRecipient)

		err = m.Send(ctx, &mailer.Email{To: []string{"a@b.c"}}, nil)
		require.ErrorIs(t, err, mailer.ErrNoContent)

		err = m.Send(ctx, &mailer.Email{To: []string{"a@b.c"}, HTML: "x"}, nil)
		require.ErrorIs(t, err, mailer.ErrNoSubject)
	})

	t.Run("wraps provider failure", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{err: context.DeadlineExceeded}
		m := mailer.New(sender, "Notification")

		err := m.Send(ctx, &mailer.Email{
			To:      []string{"user@example.com"},
			Subject: "Welcome",
			HTML:    "<p>Hi</p>",
		}, nil)
		require.ErrorIs(t, err, mailer.ErrSendFailed)
	})
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a@b.c", mailer.Recipient("", "a@b.c"))
	require.Equal(t, "Alice <a@b.c>", mailer.Recipient("Alice", "a@b.c"))
}
