package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"pokedoro/internal/forms"
	"pokedoro/internal/metrics"
	"pokedoro/internal/models"
	"pokedoro/internal/repositories"
)

const SuccessMessage = "Logged in with ease!"

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

// Effects are the per-session side effects of one login.
type Effects struct {
	Storage   repositories.Storage
	Notifier  Notifier
	Navigator Navigator
}

// SuccessHandler persists the token, notifies and navigates. It fires at most
// once; later calls are no-ops.
type SuccessHandler struct {
	effects Effects
	route   string

	once sync.Once
}

func NewSuccessHandler(effects Effects, route string) *SuccessHandler {
	return &SuccessHandler{effects: effects, route: route}
}

func (h *SuccessHandler) HandleSuccess(ctx context.Context, resp *models.LoginResponse) error {
	var err error
	h.once.Do(func() {
		if err = h.effects.Storage.Set(ctx, repositories.AuthKey, resp.Token); err != nil {
			err = fmt.Errorf("storing session token: %w", err)
			return
		}
		h.effects.Notifier.Success(SuccessMessage)
		h.effects.Navigator.Navigate(h.route)
	})
	return err
}

// LoginService runs one login submission for a browser session.
type LoginService interface {
	Login(ctx context.Context, sessionID string, creds models.Credentials, effects Effects) (*forms.LoginForm, error)
	InFlight(sessionID string) bool
}

type loginService struct {
	client   AuthClient
	route    string
	inFlight *InFlightRegistry
}

func NewLoginService(client AuthClient, postLoginRoute string) LoginService {
	return &loginService{client: client, route: postLoginRoute, inFlight: NewInFlightRegistry()}
}

func (s *loginService) InFlight(sessionID string) bool {
	return s.inFlight.Busy(sessionID)
}

// Login fills a fresh form with creds and submits it. Validation errors are
// returned without notifying; authentication errors are reported through the
// notifier and returned. The returned form always reflects the final state.
func (s *loginService) Login(ctx context.Context, sessionID string, creds models.Credentials, effects Effects) (*forms.LoginForm, error) {
	onSuccess := NewSuccessHandler(effects, s.route)
	form := forms.NewLoginForm(s.client, onSuccess.HandleSuccess)
	form.Fill(creds)

	if err := forms.Validate(creds); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		log.Debug().Str("email", creds.Email).Err(err).Msg("Login blocked by validation")
		return form, err
	}

	if !s.inFlight.Acquire(sessionID) {
		metrics.LoginAttemptsTotal.WithLabelValues("in_flight").Inc()
		log.Warn().Str("session_id", sessionID).Msg("Rejected overlapping login submission")
		return form, forms.ErrSubmissionInFlight
	}
	defer s.inFlight.Release(sessionID)

	metrics.SubmissionsInFlight.Inc()
	_, err := form.Submit(ctx)
	metrics.SubmissionsInFlight.Dec()

	var aerr *AuthError
	switch {
	case err == nil:
		metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
		log.Info().Str("email", creds.Email).Msg("User logged in successfully")
		return form, nil
	case errors.As(err, &aerr):
		metrics.LoginAttemptsTotal.WithLabelValues(aerr.outcome()).Inc()
		if aerr.Kind == AuthUnclassified {
			log.Error().Err(err).Str("email", creds.Email).Int("status", aerr.Code).Msg("Login failed with unclassified error")
		} else {
			log.Warn().Str("email", creds.Email).Int("status", aerr.Code).Msg("Login rejected by authentication endpoint")
		}
		effects.Notifier.Error(aerr.UserMessage())
		return form, err
	default:
		// The request succeeded but the post-login effects did not complete.
		metrics.LoginAttemptsTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("email", creds.Email).Msg("Failed to complete login")
		effects.Notifier.Error(GenericFailureMessage)
		return form, err
	}
}
