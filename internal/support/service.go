// Package support forwards contact requests from signed-in users to the
// support mailbox.
package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/email"
	"github.com/nfrund/sparx/internal/events"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/nfrund/sparx/internal/pubsub"
	"github.com/samber/oops"
)

// Service sends contact-support emails.
type Service struct {
	mailer    domain.EmailSender
	publisher pubsub.Publisher
	inbox     string
	sender    string
	now       func() time.Time
}

// NewService creates a support Service delivering to inbox from sender.
func NewService(mailer domain.EmailSender, publisher pubsub.Publisher, inbox, sender string) *Service {
	return &Service{
		mailer:    mailer,
		publisher: publisher,
		inbox:     inbox,
		sender:    sender,
		now:       time.Now,
	}
}

// ContactSupport emails the message to the support inbox with the user as
// reply-to address.
func (s *Service) ContactSupport(ctx context.Context, user *domain.User, subject, message string) error {
	if user == nil {
		return oops.In("support").Code(domain.CodeUnauthorized).
			Public("Unauthorized, please sign up").
			Wrap(domain.ErrUnauthorized)
	}

	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return oops.In("support").Code(domain.CodeInvalidInput).
			Public("Please add subject and message").
			Wrap(domain.ErrInvalidInput)
	}

	body, err := email.Render(email.ContactSupportEmail(user.Name, user.Email, message))
	if err != nil {
		return oops.In("support").Code(domain.CodeInternal).Wrapf(err, "failed to render support email")
	}

	err = s.mailer.Send(ctx, domain.Email{
		To:      s.inbox,
		From:    s.sender,
		ReplyTo: user.Email,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to send support email", "user_id", user.Key(), "error", err)
		return oops.In("support").Code(domain.CodeEmailDelivery).
			Public("Email not sent, please try again").
			Wrap(errors.Join(domain.ErrEmailDelivery, err))
	}

	if s.publisher != nil {
		payload := events.SupportEvent{UserID: user.Key(), Subject: subject, At: s.now().UTC()}
		if err := events.SupportMessageSent.Publish(ctx, s.publisher, user.Key(), payload); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to publish event", "topic", events.SupportMessageSent.Topic(), "error", err)
		}
	}
	return nil
}
