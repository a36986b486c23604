package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ticketdesk/dashboard/internal/core/domain"
	"github.com/ticketdesk/dashboard/internal/core/ports"
)

// Signup steps, in order.
const (
	StepAccount = "account"
	StepLogin   = "login"
	StepWebhook = "webhook"
)

// SignupRequest registers a tenant admin and their tenant.
type SignupRequest struct {
	domain.Registration
	WebhookURL string
}

type SignupResult struct {
	User    *domain.User
	Landing string
}

// PartialSignupError reports a signup that stopped after creating the
// account. The completed steps are not rolled back.
type PartialSignupError struct {
	Completed []string
	Err       error
}

func (e *PartialSignupError) Error() string {
	return fmt.Sprintf("signup stopped after %s: %v", strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialSignupError) Unwrap() []error {
	return []error{domain.ErrPartialSignup, e.Err}
}

// SignupService runs the multi-step signup flow.
type SignupService struct {
	auth     ports.AuthClient
	login    *AuthService
	settings ports.SettingsClient
	logger   zerolog.Logger
}

func NewSignupService(auth ports.AuthClient, login *AuthService, settings ports.SettingsClient, logger zerolog.Logger) *SignupService {
	return &SignupService{auth: auth, login: login, settings: settings, logger: logger}
}

// Signup creates the account, logs in and optionally sets the webhook.
func (s *SignupService) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	user, err := s.auth.RegisterUser(ctx, req.Registration)
	if err != nil {
		return nil, err
	}
	done := []string{StepAccount}

	landing, err := s.login.Login(ctx, domain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		return nil, s.partial(user, done, err)
	}
	done = append(done, StepLogin)

	if req.WebhookURL != "" {
		if _, err := s.settings.UpdateWebhook(ctx, req.WebhookURL); err != nil {
			return &SignupResult{User: user, Landing: landing}, s.partial(user, done, err)
		}
	}
	return &SignupResult{User: user, Landing: landing}, nil
}

func (s *SignupService) partial(user *domain.User, done []string, err error) error {
	s.logger.Warn().Err(err).Str("user_id", user.ID).Strs("completed", done).Msg("signup partially completed")
	return &PartialSignupError{Completed: done, Err: err}
}
