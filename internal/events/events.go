// Package events declares the lifecycle events published on the bus.
package events

import (
	"time"

	"github.com/nfrund/sparx/internal/pubsub"
)

// UserEvent describes something that happened to a user account.
type UserEvent struct {
	UserID string    `json:"user_id,omitempty"`
	Email  string    `json:"email,omitempty"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// ProductEvent describes a change to a product.
type ProductEvent struct {
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	At        time.Time `json:"at"`
}

// SupportEvent describes a contact request sent to support.
type SupportEvent struct {
	UserID  string    `json:"user_id"`
	Subject string    `json:"subject"`
	At      time.Time `json:"at"`
}

var (
	UserRegistered         = pubsub.NewEvent[UserEvent]("auth.user.registered")
	UserLoggedIn           = pubsub.NewEvent[UserEvent]("auth.user.logged_in")
	LoginFailed            = pubsub.NewEvent[UserEvent]("auth.login.failed")
	UserLoggedOut          = pubsub.NewEvent[UserEvent]("auth.user.logged_out")
	ProfileUpdated         = pubsub.NewEvent[UserEvent]("auth.profile.updated")
	PasswordChanged        = pubsub.NewEvent[UserEvent]("auth.password.changed")
	PasswordResetRequested = pubsub.NewEvent[UserEvent]("auth.password.reset_requested")
	PasswordReset          = pubsub.NewEvent[UserEvent]("auth.password.reset")

	ProductCreated = pubsub.NewEvent[ProductEvent]("inventory.product.created")
	ProductUpdated = pubsub.NewEvent[ProductEvent]("inventory.product.updated")
	ProductDeleted = pubsub.NewEvent[ProductEvent]("inventory.product.deleted")

	SupportMessageSent = pubsub.NewEvent[SupportEvent]("support.message.sent")
)

// Topics lists every topic declared in this package.
func Topics() []string {
	return []string{
		UserRegistered.Topic(),
		UserLoggedIn.Topic(),
		LoginFailed.Topic(),
		UserLoggedOut.Topic(),
		ProfileUpdated.Topic(),
		PasswordChanged.Topic(),
		PasswordResetRequested.Topic(),
		PasswordReset.Topic(),
		ProductCreated.Topic(),
		ProductUpdated.Topic(),
		ProductDeleted.Topic(),
		SupportMessageSent.Topic(),
	}
}
