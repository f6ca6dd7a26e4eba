package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/notifications"
	"wayfarer/internal/repository"

	"gorm.io/gorm"
)

const maxContactMessageLen = 5000

// ContactService handles the three public submission artifacts (contact
// messages, objective inquiries, guide bookings) and their admin-side inbox
// transitions. Submissions are anonymous; everything else is admin only.
type ContactService struct {
	contactRepo   repository.ContactRepository
	directoryRepo repository.DirectoryRepository
	notifier      *notifications.Notifier
	adminEmail    string
	now           func() time.Time
}

// NewContactService returns a new ContactService.
func NewContactService(
	contactRepo repository.ContactRepository,
	directoryRepo repository.DirectoryRepository,
	notifier *notifications.Notifier,
	adminEmail string,
) *ContactService {
	return &ContactService{
		contactRepo:   contactRepo,
		directoryRepo: directoryRepo,
		notifier:      notifier,
		adminEmail:    adminEmail,
		now:           time.Now,
	}
}

type SubmitMessageInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type SubmitInquiryInput struct {
	ObjectiveID uint
	Name        string
	Email       string
	Message     string
}

type SubmitBookingInput struct {
	GuideID uint
	Name    string
	Email   string
	Phone   string
	Message string
}

func validateContactFields(name, email, message string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.NewValidationError("A valid email address is required")
	}
	if strings.TrimSpace(message) == "" {
		return models.NewValidationError("Message is required")
	}
	if len(message) > maxContactMessageLen {
		return models.NewValidationError("Message is too long")
	}
	return nil
}

// SubmitMessage stores a contact-form submission and notifies admins.
func (s *ContactService) SubmitMessage(ctx context.Context, in SubmitMessageInput) (*models.ContactMessage, error) {
	if err := validateContactFields(in.Name, in.Email, in.Message); err != nil {
		return nil, err
	}
	m := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
		Status:  models.InboxStatusNew,
	}
	if err := s.contactRepo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	s.notifier.NotifyAdmin(ctx, notifications.EventContactMessage, s.adminEmail, map[string]any{
		"message_id": m.ID,
		"name":       m.Name,
		"subject":    m.Subject,
	})
	return m, nil
}

// SubmitInquiry stores a question about an objective and notifies admins.
func (s *ContactService) SubmitInquiry(ctx context.Context, in SubmitInquiryInput) (*models.ObjectiveInquiry, error) {
	if err := validateContactFields(in.Name, in.Email, in.Message); err != nil {
		return nil, err
	}
	objective, err := s.directoryRepo.GetObjective(ctx, in.ObjectiveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Objective", in.ObjectiveID)
		}
		return nil, err
	}
	q := &models.ObjectiveInquiry{
		ObjectiveID: in.ObjectiveID,
		Name:        strings.TrimSpace(in.Name),
		Email:       in.Email,
		Message:     in.Message,
		Status:      models.InboxStatusNew,
	}
	if err := s.contactRepo.CreateInquiry(ctx, q); err != nil {
		return nil, err
	}
	s.notifier.NotifyAdmin(ctx, notifications.EventObjectiveInquiry, s.adminEmail, map[string]any{
		"inquiry_id": q.ID,
		"objective":  objective.Name,
		"name":       q.Name,
	})
	return q, nil
}

// SubmitBooking stores a guide booking request and notifies admins.
func (s *ContactService) SubmitBooking(ctx context.Context, in SubmitBookingInput) (*models.GuideBooking, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, models.NewValidationError("A valid email address is required")
	}
	if len(in.Message) > maxContactMessageLen {
		return nil, models.NewValidationError("Message is too long")
	}
	guide, err := s.directoryRepo.GetGuide(ctx, in.GuideID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Guide", in.GuideID)
		}
		return nil, err
	}
	b := &models.GuideBooking{
		GuideID: in.GuideID,
		Name:    strings.TrimSpace(in.Name),
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Message: in.Message,
		Status:  models.BookingStatusPending,
	}
	if err := s.contactRepo.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	s.notifier.NotifyAdmin(ctx, notifications.EventGuideBooking, s.adminEmail, map[string]any{
		"booking_id": b.ID,
		"guide":      guide.Name,
		"name":       b.Name,
	})
	return b, nil
}

// ListMessages returns inbox messages, optionally filtered by status.
func (s *ContactService) ListMessages(ctx context.Context, actor models.Actor, status string, limit, offset int) ([]*models.ContactMessage, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	return s.contactRepo.ListMessages(ctx, status, limit, offset)
}

func (s *ContactService) ListInquiries(ctx context.Context, actor models.Actor, status string, limit, offset int) ([]*models.ObjectiveInquiry, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	return s.contactRepo.ListInquiries(ctx, status, limit, offset)
}

func (s *ContactService) ListBookings(ctx context.Context, actor models.Actor, status string, limit, offset int) ([]*models.GuideBooking, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	return s.contactRepo.ListBookings(ctx, status, limit, offset)
}

// inboxPatchFor builds the timestamp side effects of an inbox transition:
// mark_read stamps ReadAt, mark_replied stamps RepliedAt (and ReadAt when the
// message skipped the read step).
func inboxPatchFor(next, action string, readAt *time.Time, notes *string, now time.Time) repository.InboxPatch {
	patch := repository.InboxPatch{Status: next, AdminNotes: notes}
	switch action {
	case ActionMarkRead:
		patch.ReadAt = &now
	case ActionMarkReplied:
		patch.RepliedAt = &now
		if readAt == nil {
			patch.ReadAt = &now
		}
	}
	return patch
}

// TransitionMessage applies an admin inbox action to a contact message.
func (s *ContactService) TransitionMessage(ctx context.Context, actor models.Actor, id uint, action string, notes *string) (*models.ContactMessage, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	m, err := s.contactRepo.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, err
	}
	next, err := NextStatus(KindContactMessage, m.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindContactMessage), "rejected").Inc()
		return nil, err
	}
	patch := inboxPatchFor(next, action, m.ReadAt, notes, s.now())
	if err := s.contactRepo.PatchMessage(ctx, id, patch); err != nil {
		return nil, err
	}
	middleware.ModerationTransitions.WithLabelValues(string(KindContactMessage), "applied").Inc()
	slog.InfoContext(ctx, "inbox transition",
		"kind", KindContactMessage, "id", id, "action", action,
		"from", m.Status, "to", next, "admin_id", actor.ID)
	return s.contactRepo.GetMessage(ctx, id)
}

// TransitionInquiry applies an admin inbox action to an objective inquiry.
func (s *ContactService) TransitionInquiry(ctx context.Context, actor models.Actor, id uint, action string, notes *string) (*models.ObjectiveInquiry, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	q, err := s.contactRepo.GetInquiry(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Inquiry", id)
		}
		return nil, err
	}
	next, err := NextStatus(KindInquiry, q.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindInquiry), "rejected").Inc()
		return nil, err
	}
	patch := inboxPatchFor(next, action, q.ReadAt, notes, s.now())
	if err := s.contactRepo.PatchInquiry(ctx, id, patch); err != nil {
		return nil, err
	}
	middleware.ModerationTransitions.WithLabelValues(string(KindInquiry), "applied").Inc()
	slog.InfoContext(ctx, "inbox transition",
		"kind", KindInquiry, "id", id, "action", action,
		"from", q.Status, "to", next, "admin_id", actor.ID)
	return s.contactRepo.GetInquiry(ctx, id)
}

// TransitionBooking advances a guide booking through its pipeline.
func (s *ContactService) TransitionBooking(ctx context.Context, actor models.Actor, id uint, action string, notes *string) (*models.GuideBooking, error) {
	if !actor.IsAdmin() {
		return nil, models.NewUnauthorizedError("Admin access required")
	}
	b, err := s.contactRepo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Booking", id)
		}
		return nil, err
	}
	next, err := NextStatus(KindBooking, b.Status, action)
	if err != nil {
		middleware.ModerationTransitions.WithLabelValues(string(KindBooking), "rejected").Inc()
		return nil, err
	}
	patch := repository.InboxPatch{Status: next, AdminNotes: notes}
	if err := s.contactRepo.PatchBooking(ctx, id, patch); err != nil {
		return nil, err
	}
	middleware.ModerationTransitions.WithLabelValues(string(KindBooking), "applied").Inc()
	slog.InfoContext(ctx, "booking transition",
		"booking_id", id, "action", action, "from", b.Status, "to", next, "admin_id", actor.ID)
	return s.contactRepo.GetBooking(ctx, id)
}
