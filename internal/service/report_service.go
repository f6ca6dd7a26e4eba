package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/notifications"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

// ReportService handles user-filed content reports and their moderator
// resolution.
type ReportService struct {
	reportRepo repository.ReportRepository
	postRepo   repository.PostRepository
	replyRepo  repository.ReplyRepository
	notifier   *notifications.Notifier
	now        func() time.Time
}

type CreateReportInput struct {
	Actor       models.Actor
	TargetType  string
	TargetID    uint
	Reason      string
	Description string
}

// NewReportService returns a new ReportService.
func NewReportService(
	reportRepo repository.ReportRepository,
	postRepo repository.PostRepository,
	replyRepo repository.ReplyRepository,
	notifier *notifications.Notifier,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		postRepo:   postRepo,
		replyRepo:  replyRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (s *ReportService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if in.Actor.Anonymous() {
		return nil, models.NewUnauthorizedError("Sign in to report content")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}

	// A report references exactly one of post or reply.
	switch in.TargetType {
	case models.ReportTargetPost:
		if _, err := s.postRepo.GetByID(ctx, in.TargetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Post", in.TargetID)
			}
			return nil, err
		}
	case models.ReportTargetReply:
		if _, err := s.replyRepo.GetByID(ctx, in.TargetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Reply", in.TargetID)
			}
			return nil, err
		}
	default:
		return nil, models.NewValidationError("target_type must be post or reply")
	}

	report := &models.Report{
		TargetType:  in.TargetType,
		TargetID:    in.TargetID,
		ReporterID:  in.Actor.ID,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return s.reportRepo.GetByID(ctx, report.ID)
}

func (s *ReportService) ListReports(ctx context.Context, actor models.Actor, status string, limit, offset int) ([]*models.Report, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can list reports")
	}
	return s.reportRepo.ListByStatus(ctx, status, limit, offset)
}

// CloseReport resolves or dismisses a pending report, recording the
// resolver identity and timestamp. Closing an already-closed report is an
// InvalidTransition, never silently accepted.
func (s *ReportService) CloseReport(ctx context.Context, actor models.Actor, reportID uint, action string) (*models.Report, error) {
	if !actor.IsModerator() {
		return nil, models.NewUnauthorizedError("Only moderators can close reports")
	}
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", reportID)
		}
		return nil, err
	}

	next, err := NextStatus(KindReport, report.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindReport), "rejected").Inc()
		return nil, err
	}

	if err := s.reportRepo.Close(ctx, reportID, next, actor.ID, s.now()); err != nil {
		return nil, err
	}

	middleware.ModerationTransitions.WithLabelValues(string(KindReport), "applied").Inc()
	slog.InfoContext(ctx, "report closed",
		"report_id", reportID, "to", next, "resolver_id", actor.ID)

	// Best effort: the reporter hears their report was handled.
	s.notifier.NotifyUser(ctx, report.ReporterID, notifications.EventReportClosed, map[string]any{
		"report_id": reportID,
		"status":    next,
	})

	return s.reportRepo.GetByID(ctx, reportID)
}
