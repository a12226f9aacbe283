package otp

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/apex-admissions/admission_api/internal/logging"
	"github.com/apex-admissions/admission_api/internal/notification"
	"github.com/apex-admissions/admission_api/internal/validation"
)

const (
	lockStripes = 64
	mailSubject = "Your Apex Admission Portal OTP"
)

// Clock abstracts time so tests can move past expiry.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Manager issues and verifies email passcodes.
//
// Calls for the same identity are serialized through striped mutexes, so an
// attempt counter cannot be lost between a concurrent Issue and Verify.
type Manager struct {
	store    Store
	notifier notification.Notifier
	clock    Clock
	logger   *slog.Logger
	ttl      time.Duration
	hashCost int
	locks    [lockStripes]sync.Mutex
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(m *Manager) { m.clock = c } }

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost used to store codes.
func WithHashCost(cost int) Option { return func(m *Manager) { m.hashCost = cost } }

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.logger = l } }

// NewManager builds a manager over store that delivers codes through notifier.
func NewManager(store Store, notifier notification.Notifier, opts ...Option) (*Manager, error) {
	if notifier == nil {
		return nil, ErrNotConfigured
	}
	if store == nil {
		store = NewMemoryStore()
	}
	m := &Manager{
		store:    store,
		notifier: notifier,
		clock:    systemClock{},
		logger:   logging.Discard(),
		ttl:      DefaultTTL,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue creates a fresh code for email, replacing any live one, and emails it.
// When delivery fails the returned error wraps ErrDeliveryFailed and the record
// is kept, so a code that was never received can still be verified.
func (m *Manager) Issue(ctx context.Context, email string) (IssueResult, error) {
	if !validation.IsPlausibleEmail(email) {
		return IssueResult{}, ErrInvalidEmail
	}

	code, err := generateCode()
	if err != nil {
		return IssueResult{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), m.hashCost)
	if err != nil {
		return IssueResult{}, fmt.Errorf("hash code: %w", err)
	}

	key := identityKey(email)
	result := IssueResult{Identity: key, ExpiresAt: m.clock.Now().Add(m.ttl), Code: code}

	unlock := m.lock(key)
	m.store.Put(key, Record{CodeHash: hash, ExpiresAt: result.ExpiresAt})
	unlock()

	m.logger.Info("otp issued", slog.String("email", logging.RedactEmail(key)), slog.Time("expires_at", result.ExpiresAt))

	err = m.notifier.Send(ctx, notification.Message{
		Kind:     notification.KindOTP,
		To:       email,
		Subject:  mailSubject,
		HTMLBody: fmt.Sprintf("<p>Your One-Time Password (OTP) is: <b>%s</b>. It is valid for %d minutes.</p>", code, int(m.ttl/time.Minute)),
	})
	if err != nil {
		m.logger.Error("otp delivery failed", slog.String("email", logging.RedactEmail(key)), slog.Any("error", err))
		return result, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return result, nil
}

// Verify checks code against the live record for email. Expired and exhausted
// records are removed when encountered; a successful match consumes the record.
// The attempt ceiling is checked before the code, so the sixth submission after
// five misses is rejected even when correct.
func (m *Manager) Verify(_ context.Context, email, code string) (Verdict, error) {
	if strings.TrimSpace(email) == "" || code == "" {
		return "", ErrMissingInput
	}

	key := identityKey(email)
	unlock := m.lock(key)
	defer unlock()

	rec, ok := m.store.Get(key)
	switch {
	case !ok:
		return VerdictNotFound, nil
	case m.clock.Now().After(rec.ExpiresAt):
		m.store.Delete(key)
		return VerdictExpired, nil
	case rec.Attempts >= MaxAttempts:
		m.store.Delete(key)
		return VerdictTooManyAttempts, nil
	case bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(code)) == nil:
		m.store.Delete(key)
		return VerdictVerified, nil
	default:
		attempts := m.store.IncrementAttempts(key)
		m.logger.Warn("otp mismatch", slog.String("email", logging.RedactEmail(key)), slog.Int("attempts", attempts))
		return VerdictMismatch, nil
	}
}

func (m *Manager) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func identityKey(email string) string {
	return strings.ToLower(email)
}
