// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package logging

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// AuthEvent names an account operation written to the audit log.
type AuthEvent string

const (
	EventSignup        AuthEvent = "signup"
	EventLogin         AuthEvent = "login"
	EventPasswordReset AuthEvent = "password_reset"
)

// AuditLogger writes account events with the email masked.
// Passwords and tokens are never accepted as fields.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger on the global logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: WithComponent("auth")}
}

// NewAuditLoggerWithLogger creates an audit logger on a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// Log records one account event. reason is only written for failures.
func (l *AuditLogger) Log(ctx context.Context, event AuthEvent, email string, success bool, reason string) {
	e := l.logger.Info().Str("event", string(event)).Str("email", SanitizeEmail(email))
	if id := RequestIDFromContext(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	if success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
		if reason != "" {
			e = e.Str("reason", reason)
		}
	}
	e.Msg("account event")
}

// SanitizeEmail masks an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}

	atIndex := strings.Index(email, "@")
	if atIndex <= 0 {
		return "***"
	}

	localPart := email[:atIndex]
	domain := email[atIndex:]

	if len(localPart) <= 2 {
		return "***" + domain
	}
	return localPart[:2] + "***" + domain
}

// SanitizeValue strips control characters so user-supplied strings cannot forge log lines.
func SanitizeValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, truncateString(s, 200))
}

// truncateString truncates a string to a maximum length in bytes.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
