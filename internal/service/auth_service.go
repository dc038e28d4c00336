package service

import (
	"context"
	"sync"
	"sync/atomic"

	"authgate/internal/dto"
	"authgate/internal/identity"
	"authgate/internal/pkg/logger"
	"authgate/internal/session"

	"github.com/go-playground/validator/v10"
)

// IAuthService owns every state-changing path into the Session Store. The
// store is written here and only here; the Navigation Gate just reads.
type IAuthService interface {
	Bootstrap(ctx context.Context)
	Login(ctx context.Context, req *dto.LoginRequest) (*identity.Identity, error)
	Signup(ctx context.Context, req *dto.SignupRequest) (*identity.Identity, error)
	Logout(ctx context.Context) error
}

type authService struct {
	client   identity.IClient
	store    *session.Store
	logger   logger.ILogger
	validate *validator.Validate

	bootstrapOnce sync.Once
	inFlight      atomic.Bool
}

func NewAuthService(client identity.IClient, store *session.Store, log logger.ILogger) IAuthService {
	return &authService{
		client:   client,
		store:    store,
		logger:   log,
		validate: validator.New(),
	}
}

// Bootstrap resolves the initial session status, exactly once per process.
// It never surfaces an error: an unreachable backend fails closed to
// unauthenticated and the user retries by logging in.
func (s *authService) Bootstrap(ctx context.Context) {
	s.bootstrapOnce.Do(func() {
		who, err := s.client.CurrentIdentity(ctx)
		if err == nil {
			s.store.SetAuthenticated(who)
			s.logger.Info("auth", "bootstrap resolved to authenticated", map[string]interface{}{
				"email": who.Email,
			})
			return
		}

		if !identity.IsKind(err, identity.KindNoSession) {
			s.logger.Warn("auth", "bootstrap check failed, treating as logged out", map[string]interface{}{
				"error": err.Error(),
			})
		}
		s.store.SetUnauthenticated()
	})
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*identity.Identity, error) {
	// 1. Serialize: one flow at a time per store
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, errAttemptInFlight()
	}
	defer s.inFlight.Store(false)

	// 2. Local validation, before any network call
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	// 3. A fresh login on top of an existing session is not a supported path
	if s.store.Read().Status == session.StatusAuthenticated {
		return nil, identity.NewValidationError("already signed in, log out first")
	}

	// 4. Backend call, then store write
	who, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		// Store stays untouched so the form can re-enable for retry
		s.logger.Info("auth", "login failed", map[string]interface{}{
			"kind": string(identity.KindOf(err)),
		})
		return nil, err
	}

	s.store.SetAuthenticated(who)
	s.logger.Info("auth", "login succeeded", map[string]interface{}{"email": who.Email})
	return who, nil
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*identity.Identity, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, errAttemptInFlight()
	}
	defer s.inFlight.Store(false)

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if s.store.Read().Status == session.StatusAuthenticated {
		return nil, identity.NewValidationError("already signed in, log out first")
	}

	// 1. Create the account. This establishes no session by itself.
	if _, err := s.client.CreateAccount(ctx, req.Email, req.Password, req.Name); err != nil {
		s.logger.Info("auth", "signup failed", map[string]interface{}{
			"kind": string(identity.KindOf(err)),
		})
		return nil, err
	}

	// 2. Log in with the same credentials. If this fails the account exists
	// server-side with no local session; the user retries via login, not a
	// second signup.
	who, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("auth", "account created but follow-up login failed", map[string]interface{}{
			"kind": string(identity.KindOf(err)),
		})
		return nil, err
	}

	s.store.SetAuthenticated(who)
	s.logger.Info("auth", "signup succeeded", map[string]interface{}{"email": who.Email})
	return who, nil
}

// Logout always ends with the store unauthenticated. A backend failure is
// logged, not surfaced: the local session is dropped either way.
func (s *authService) Logout(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return errAttemptInFlight()
	}
	defer s.inFlight.Store(false)

	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("auth", "backend logout failed, dropping local session anyway", map[string]interface{}{
			"kind": string(identity.KindOf(err)),
		})
	}

	s.store.SetUnauthenticated()
	return nil
}

func errAttemptInFlight() error {
	return identity.NewValidationError("another attempt is already in progress")
}

// validateRequest translates validator failures into the two user-facing
// messages the forms show: missing fields vs. mismatched passwords.
func (s *authService) validateRequest(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return identity.NewValidationError("all fields are required")
			}
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "eqfield" {
				return identity.NewValidationError("passwords do not match")
			}
		}
	}
	return identity.NewValidationError("all fields are required")
}
