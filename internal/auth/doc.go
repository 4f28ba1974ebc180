// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package auth implements the mock account endpoints used by the dashboard.

This is a prototype identity layer. Passwords are stored as given and the
login token is the fixed string "mock_token_<email>". Neither is suitable for
a real deployment; a real one needs a credential hash and signed tokens.

Accounts live behind the IdentityStore interface. MemoryStore keeps them in
process memory for the life of the server; it is constructed by the caller
and injected into Service, so tests get an isolated store each.

Service operations:

  - Signup: fails with ErrUserExists when the email is taken.
  - Login: fails with ErrInvalidCredentials for an unknown email or any
    password mismatch. The two cases are indistinguishable to the caller.
  - ResetPassword: always succeeds and performs no action, so responses do
    not reveal whether an account exists.

Every operation is written to the audit log with the email masked.
*/
package auth
