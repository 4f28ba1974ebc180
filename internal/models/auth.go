// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package models

// SignupRequest creates a mock account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest authenticates against the mock identity store. An empty
// password is a mismatch, answered 401 by the service.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
}

// ResetPasswordRequest asks for a password reset email.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UserInfo is the public part of an account.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignupResponse confirms account creation.
type SignupResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// LoginResponse carries the mock session token.
type LoginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
	Token   string   `json:"token"`
}

// MessageResponse is a bare success acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
