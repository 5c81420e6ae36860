package support

import (
	"context"
	"errors"
	"testing"

	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/events"
	"github.com/nfrund/sparx/internal/testutils"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactSupport(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: domain.NewRecordID(domain.UserTable, "u1"), Name: "Ana", Email: "ana@x.io"}

	t.Run("sends to the inbox with reply-to", func(t *testing.T) {
		mailer := &testutils.RecordingMailer{}
		publisher := &testutils.RecordingPublisher{}
		svc := NewService(mailer, publisher, "help@sparx.io", "no-reply@sparx.io")

		require.NoError(t, svc.ContactSupport(ctx, user, "Broken", "It broke\nagain"))

		msg, ok := mailer.Last()
		require.True(t, ok)
		assert.Equal(t, "help@sparx.io", msg.To)
		assert.Equal(t, "no-reply@sparx.io", msg.From)
		assert.Equal(t, "ana@x.io", msg.ReplyTo)
		assert.Equal(t, "Broken", msg.Subject)
		assert.Contains(t, msg.HTML, "<p>It broke</p>")
		assert.Equal(t, []string{events.SupportMessageSent.Topic()}, publisher.Topics())
	})

	t.Run("requires subject and message", func(t *testing.T) {
		mailer := &testutils.RecordingMailer{}
		svc := NewService(mailer, nil, "help@sparx.io", "no-reply@sparx.io")

		err := svc.ContactSupport(ctx, user, "", "body")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Equal(t, "Please add subject and message", oops.GetPublic(err, ""))

		err = svc.ContactSupport(ctx, user, "subject", "  ")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Empty(t, mailer.Sent())
	})

	t.Run("delivery failure", func(t *testing.T) {
		mailer := &testutils.RecordingMailer{Err: testutils.ErrMailerDown}
		svc := NewService(mailer, nil, "help@sparx.io", "no-reply@sparx.io")

		err := svc.ContactSupport(ctx, user, "s", "m")
		assert.True(t, errors.Is(err, domain.ErrEmailDelivery))
		assert.Equal(t, "Email not sent, please try again", oops.GetPublic(err, ""))
	})

	t.Run("no user", func(t *testing.T) {
		svc := NewService(&testutils.RecordingMailer{}, nil, "help@sparx.io", "no-reply@sparx.io")
		err := svc.ContactSupport(ctx, nil, "s", "m")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}
