package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/email"
	"github.com/nfrund/sparx/internal/events"
	"github.com/nfrund/sparx/internal/logging"
	"github.com/nfrund/sparx/internal/pubsub"
	"github.com/samber/oops"
)

// Dependencies holds the collaborators of the Service.
type Dependencies struct {
	Users       domain.UserRepository
	ResetTokens domain.ResetTokenRepository
	Hasher      PasswordHasher
	Tokens      *TokenIssuer
	Mailer      domain.EmailSender
	Publisher   pubsub.Publisher
}

// Options tunes the behaviour of the Service.
type Options struct {
	// FrontendURL is the base of the reset link sent by email.
	FrontendURL string
	// EmailSender is the From address of outgoing mail.
	EmailSender string
	// SingleUseResetTokens deletes a reset token once it has been used.
	SingleUseResetTokens bool
}

// Service owns the credential and session lifecycle: registration, login,
// profile changes and password recovery.
type Service struct {
	users       domain.UserRepository
	resetTokens domain.ResetTokenRepository
	hasher      PasswordHasher
	tokens      *TokenIssuer
	mailer      domain.EmailSender
	publisher   pubsub.Publisher
	opts        Options
	now         func() time.Time
}

// NewService creates a new auth Service.
func NewService(deps Dependencies, opts Options) *Service {
	return &Service{
		users:       deps.Users,
		resetTokens: deps.ResetTokens,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		mailer:      deps.Mailer,
		publisher:   deps.Publisher,
		opts:        opts,
		now:         time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.tokens = s.tokens.WithClock(now)
	return s
}

// Session is a user together with a freshly issued session token.
type Session struct {
	User  *domain.User
	Token string
}

// SessionTTL is the lifetime of issued session tokens.
func (s *Service) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

func invalidInput(msg string) error {
	return oops.In("auth").Code(domain.CodeInvalidInput).Public(msg).Wrap(domain.ErrInvalidInput)
}

func notFound(msg string) error {
	return oops.In("auth").Code(domain.CodeNotFound).Public(msg).Wrap(domain.ErrNotFound)
}

func unauthorized(msg string) error {
	return oops.In("auth").Code(domain.CodeUnauthorized).Public(msg).Wrap(domain.ErrUnauthorized)
}

func internal(err error, msg string) error {
	return oops.In("auth").Code(domain.CodeInternal).Wrapf(err, "%s", msg)
}

// Register creates a new account and signs the user in.
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	emailAddr = strings.TrimSpace(emailAddr)

	if name == "" || emailAddr == "" || password == "" {
		return nil, invalidInput("Please fill in all required fields")
	}
	if len(password) < domain.MinPasswordLength {
		return nil, invalidInput("Password must be up to 6 characters")
	}
	if !domain.ValidEmail(emailAddr) {
		return nil, invalidInput("Please enter a valid email")
	}

	existing, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, internal(err, "failed to check for existing user")
	}
	if existing != nil {
		return nil, oops.In("auth").Code(domain.CodeUserExists).
			Public("Email has already been registered").
			Wrap(domain.ErrUserAlreadyExists)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(name, emailAddr, hash, s.now().UTC())
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, oops.In("auth").Code(domain.CodeUserExists).
				Public("Email has already been registered").
				Wrap(err)
		}
		return nil, internal(err, "failed to create user")
	}

	token, err := s.tokens.Issue(created.Key())
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "User registered", "user_id", created.Key())
	s.publishUser(ctx, events.UserRegistered, created.Key(), events.UserEvent{UserID: created.Key(), Email: created.Email})
	return &Session{User: created, Token: token}, nil
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*Session, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, invalidInput("Please add email and password")
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.publishUser(ctx, events.LoginFailed, "", events.UserEvent{Email: emailAddr, Reason: "unknown_user"})
			return nil, notFound("User not found, please signup")
		}
		return nil, internal(err, "failed to load user")
	}

	if !s.hasher.Verify(password, user.Password) {
		s.publishUser(ctx, events.LoginFailed, user.Key(), events.UserEvent{UserID: user.Key(), Reason: "bad_password"})
		return nil, oops.In("auth").Code(domain.CodeInvalidCredentials).
			Public("Invalid email or password").
			Wrap(domain.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Key())
	if err != nil {
		return nil, err
	}

	s.publishUser(ctx, events.UserLoggedIn, user.Key(), events.UserEvent{UserID: user.Key()})
	return &Session{User: user, Token: token}, nil
}

// Logout always succeeds. Tokens are stateless, so the cookie is simply
// cleared by the caller; the event is only published for a valid token.
func (s *Service) Logout(ctx context.Context, token string) {
	if userID, err := s.tokens.Verify(token); err == nil {
		s.publishUser(ctx, events.UserLoggedOut, userID, events.UserEvent{UserID: userID})
	}
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, unauthorized("Not authorized, please login")
		}
		return nil, internal(err, "failed to load user")
	}
	return user, nil
}

// CheckSession reports whether token is a valid, unexpired session token.
func (s *Service) CheckSession(token string) bool {
	_, err := s.tokens.Verify(token)
	return err == nil
}

// GetProfile loads the user by id.
func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal(err, "failed to load user")
	}
	return user, nil
}

// UpdateProfile merges the non-empty fields of upd into the stored profile.
// The email address cannot be changed.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd.Apply(user)
	if utf8.RuneCountInString(user.Bio) > domain.MaxBioLength {
		return nil, invalidInput("Bio must not be more than 250 characters")
	}
	if err := user.Validate(); err != nil {
		return nil, oops.In("auth").Code(domain.CodeInvalidInput).
			Public("Invalid profile data").
			With("validation", err.Error()).
			Wrap(domain.ErrInvalidInput)
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal(err, "failed to update user")
	}

	s.publishUser(ctx, events.ProfileUpdated, userID, events.UserEvent{UserID: userID})
	return updated, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFound("User not found, please signup")
		}
		return internal(err, "failed to load user")
	}

	if oldPassword == "" || newPassword == "" {
		return invalidInput("Please add old and new password")
	}
	if !s.hasher.Verify(oldPassword, user.Password) {
		return oops.In("auth").Code(domain.CodeInvalidCredentials).
			Public("Old password is incorrect").
			Wrap(domain.ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if _, err := s.users.Update(ctx, user); err != nil {
		return internal(err, "failed to store new password")
	}

	s.publishUser(ctx, events.PasswordChanged, userID, events.UserEvent{UserID: userID})
	return nil
}

// ForgotPassword issues a reset token for the account and emails the reset
// link. A previously issued token for the same user stops working.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return invalidInput("Please add an email")
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFound("User does not exist")
		}
		return internal(err, "failed to load user")
	}

	secret, err := GenerateResetSecret()
	if err != nil {
		return internal(err, "failed to generate reset token")
	}
	rawToken := secret + user.Key()

	token := domain.NewResetToken(user.ID, HashResetToken(rawToken), s.now().UTC())
	if err := s.resetTokens.Replace(ctx, token); err != nil {
		return internal(err, "failed to store reset token")
	}

	resetURL := s.opts.FrontendURL + "/resetpassword/" + rawToken
	body, err := email.Render(email.ResetPasswordEmail(user.Name, resetURL))
	if err != nil {
		return internal(err, "failed to render reset email")
	}

	// The stored token is kept even when delivery fails.
	err = s.mailer.Send(ctx, domain.Email{
		To:      user.Email,
		From:    s.opts.EmailSender,
		Subject: email.ResetPasswordSubject,
		HTML:    body,
	})
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to send reset email", "user_id", user.Key(), "error", err)
		return oops.In("auth").Code(domain.CodeEmailDelivery).
			Public("Email not sent, please try again").
			Wrap(errors.Join(domain.ErrEmailDelivery, err))
	}

	s.publishUser(ctx, events.PasswordResetRequested, user.Key(), events.UserEvent{UserID: user.Key()})
	return nil
}

// ResetPassword sets a new password using a raw reset token from the email link.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if newPassword == "" {
		return invalidInput("Please add a new password")
	}

	token, err := s.resetTokens.FindValid(ctx, HashResetToken(rawToken), s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return oops.In("auth").Code(domain.CodeResetTokenInvalid).
				Public("Invalid or Expired Token").
				Wrap(domain.ErrInvalidResetToken)
		}
		return internal(err, "failed to look up reset token")
	}

	user, err := s.users.FindByID(ctx, domain.RecordKey(token.UserID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return oops.In("auth").Code(domain.CodeResetTokenInvalid).
				Public("Invalid or Expired Token").
				Wrap(domain.ErrInvalidResetToken)
		}
		return internal(err, "failed to load user")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if _, err := s.users.Update(ctx, user); err != nil {
		return internal(err, "failed to store new password")
	}

	if s.opts.SingleUseResetTokens {
		if err := s.resetTokens.DeleteByUser(ctx, user.ID); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to consume reset token", "user_id", user.Key(), "error", err)
		}
	}

	s.publishUser(ctx, events.PasswordReset, user.Key(), events.UserEvent{UserID: user.Key()})
	return nil
}

func (s *Service) publishUser(ctx context.Context, event pubsub.Event[events.UserEvent], userID string, payload events.UserEvent) {
	if s.publisher == nil {
		return
	}
	payload.At = s.now().UTC()
	if err := event.Publish(ctx, s.publisher, userID, payload); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to publish event", "topic", event.Topic(), "error", err)
	}
}
