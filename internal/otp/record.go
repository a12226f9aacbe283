package otp

import (
	"errors"
	"time"
)

var (
	// ErrInvalidEmail is returned by Issue when the identity is not a plausible email address.
	ErrInvalidEmail = errors.New("otp: valid email address is required")
	// ErrMissingInput is returned by Verify when the identity or the code is absent.
	ErrMissingInput = errors.New("otp: email and code are required")
	// ErrDeliveryFailed wraps a notifier failure during Issue. The record stays stored.
	ErrDeliveryFailed = errors.New("otp: delivery failed")
	// ErrNotConfigured indicates the manager was built without a delivery channel.
	ErrNotConfigured = errors.New("otp: email delivery is not configured")
)

const (
	// CodeLength is the number of digits in an issued code.
	CodeLength = 6
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 10 * time.Minute
	// MaxAttempts is the number of wrong submissions tolerated before the record is dropped.
	MaxAttempts = 5
)

// Record is the per-identity OTP state. Only the Store holds records.
type Record struct {
	CodeHash  []byte
	ExpiresAt time.Time
	Attempts  int
}

// Verdict is the outcome of a verification attempt.
type Verdict string

const (
	VerdictVerified        Verdict = "verified"
	VerdictNotFound        Verdict = "not_found"
	VerdictExpired         Verdict = "expired"
	VerdictTooManyAttempts Verdict = "too_many_attempts"
	VerdictMismatch        Verdict = "mismatch"
)

// IssueResult describes a freshly issued code.
type IssueResult struct {
	Identity  string
	ExpiresAt time.Time
	// Code is the plaintext passcode. It leaves the process only by email.
	Code string
}
