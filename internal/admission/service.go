package admission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apex-admissions/admission_api/internal/logging"
	"github.com/apex-admissions/admission_api/internal/notification"
	"github.com/apex-admissions/admission_api/internal/worker"
)

// Outcome describes what happened to the admin email at submit time.
type Outcome string

const (
	OutcomeQueued        Outcome = "queued"
	OutcomeNotConfigured Outcome = "not_configured"
	OutcomeFailed        Outcome = "failed"
)

// Service records submissions and notifies the admissions office.
// A nil notifier means email is not configured; a nil pool sends inline.
type Service struct {
	repo       Repository
	notifier   notification.Notifier
	pool       *worker.Pool
	adminEmail string
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the admin notification side channel.
func NewService(repo Repository, notifier notification.Notifier, pool *worker.Pool, adminEmail string, logger *slog.Logger) *Service {
	if repo == nil {
		repo = NewMemoryRepository()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, notifier: notifier, pool: pool, adminEmail: adminEmail, logger: logger, now: time.Now}
}

// Submit records app and schedules the admin email. Only a missing applicant
// email is an error; storage and delivery problems are logged and reflected in
// the returned Outcome.
func (s *Service) Submit(ctx context.Context, app Application, payload []byte) (Submission, Outcome, error) {
	if strings.TrimSpace(string(app.Email)) == "" {
		return Submission{}, "", ErrMissingEmail
	}
	if len(payload) == 0 {
		raw, err := json.Marshal(app)
		if err != nil {
			return Submission{}, "", fmt.Errorf("encode application: %w", err)
		}
		payload = raw
	}

	now := s.now().UTC()
	sub := Submission{
		ID:        uuid.NewString(),
		Email:     string(app.Email),
		FullName:  string(app.FullName),
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.notifier == nil {
		sub.Status = StatusSkipped
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		s.logger.Error("record submission", slog.String("submission_id", sub.ID), slog.Any("error", err))
	}

	if s.notifier == nil {
		s.logger.Error("admin notification skipped: email service not configured", slog.String("submission_id", sub.ID))
		return sub, OutcomeNotConfigured, nil
	}

	body, err := RenderAdminNotice(app)
	if err != nil {
		s.finish(ctx, sub.ID, err)
		sub.Status = StatusFailed
		return sub, OutcomeFailed, nil
	}
	msg := notification.Message{
		Kind:     notification.KindAdminNotice,
		To:       s.adminEmail,
		Subject:  "New Application Received from " + string(app.FullName),
		HTMLBody: body,
	}

	deliver := func(taskCtx context.Context) error {
		err := s.notifier.Send(taskCtx, msg)
		s.finish(taskCtx, sub.ID, err)
		return err
	}

	if s.pool == nil {
		if err := deliver(ctx); err != nil {
			sub.Status = StatusFailed
			return sub, OutcomeFailed, nil
		}
		sub.Status = StatusSent
		return sub, OutcomeQueued, nil
	}
	if err := s.pool.Go(ctx, "admin_notice", deliver); err != nil {
		s.finish(ctx, sub.ID, err)
		sub.Status = StatusFailed
		return sub, OutcomeFailed, nil
	}
	return sub, OutcomeQueued, nil
}

// Get returns a recorded submission.
func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) finish(ctx context.Context, id string, sendErr error) {
	status, lastError := StatusSent, ""
	if sendErr != nil {
		status, lastError = StatusFailed, sendErr.Error()
		s.logger.Error("admin notification failed", slog.String("submission_id", id), slog.Any("error", sendErr))
	} else {
		s.logger.Info("admin notification sent", slog.String("submission_id", id), slog.String("to", logging.RedactEmail(s.adminEmail)))
	}
	if err := s.repo.UpdateStatus(ctx, id, status, lastError); err != nil {
		s.logger.Warn("update submission status", slog.String("submission_id", id), slog.Any("error", err))
	}
}
