// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
	"github.com/tomtom215/cohortlens/internal/models"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MockTokenPrefix prefixes the email to form the login token.
const MockTokenPrefix = "mock_token_"

// Service implements signup, login and password reset on an IdentityStore.
type Service struct {
	store IdentityStore
	audit *logging.AuditLogger
}

// NewService creates a Service. A nil audit logger uses the global logger.
func NewService(store IdentityStore, audit *logging.AuditLogger) *Service {
	if audit == nil {
		audit = logging.NewAuditLogger()
	}
	return &Service{store: store, audit: audit}
}

// Signup registers a new account.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (models.SignupResponse, error) {
	err := s.store.Create(ctx, Account{Email: req.Email, Name: req.Name, Password: req.Password})
	switch {
	case errors.Is(err, ErrUserExists):
		s.audit.Log(ctx, logging.EventSignup, req.Email, false, "email already registered")
		metrics.RecordAuthOperation("signup", "conflict")
		return models.SignupResponse{}, err
	case err != nil:
		s.audit.Log(ctx, logging.EventSignup, req.Email, false, err.Error())
		metrics.RecordAuthOperation("signup", "error")
		return models.SignupResponse{}, fmt.Errorf("create account: %w", err)
	}

	s.audit.Log(ctx, logging.EventSignup, req.Email, true, "")
	metrics.RecordAuthOperation("signup", "success")

	return models.SignupResponse{
		Success: true,
		Message: "Account created successfully",
		User:    models.UserInfo{Email: req.Email, Name: req.Name},
	}, nil
}

// Login checks the password and returns the mock token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	acct, err := s.store.Get(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.audit.Log(ctx, logging.EventLogin, req.Email, false, err.Error())
		metrics.RecordAuthOperation("login", "error")
		return models.LoginResponse{}, fmt.Errorf("load account: %w", err)
	}
	if err != nil || acct.Password != req.Password {
		s.audit.Log(ctx, logging.EventLogin, req.Email, false, "invalid credentials")
		metrics.RecordAuthOperation("login", "unauthorized")
		return models.LoginResponse{}, ErrInvalidCredentials
	}

	s.audit.Log(ctx, logging.EventLogin, req.Email, true, "")
	metrics.RecordAuthOperation("login", "success")

	return models.LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    models.UserInfo{Email: acct.Email, Name: acct.Name},
		Token:   MockToken(acct.Email),
	}, nil
}

// ResetPassword acknowledges the request without looking the email up.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) models.MessageResponse {
	s.audit.Log(ctx, logging.EventPasswordReset, req.Email, true, "")
	metrics.RecordAuthOperation("reset_password", "success")

	return models.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Password reset email sent to %s", req.Email),
	}
}

// MockToken returns the non-cryptographic token issued for email.
func MockToken(email string) string {
	return MockTokenPrefix + email
}
