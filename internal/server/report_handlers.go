package server

import (
	"strconv"

	"wayfarer/internal/models"
	"wayfarer/internal/notifications"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req struct {
		TargetType  string `json:"target_type"`
		TargetID    uint   `json:"target_id"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.reportService.CreateReport(c.UserContext(), service.CreateReportInput{
		Actor:       actor(c),
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.notifier.NotifyAdmin(c.UserContext(), notifications.EventReportFiled, "", map[string]any{
		"report_id":   report.ID,
		"target_type": report.TargetType,
		"target_id":   strconv.FormatUint(uint64(report.TargetID), 10),
		"reason":      report.Reason,
	})

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/moderation/reports
func (s *Server) GetReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	reports, err := s.reportService.ListReports(c.UserContext(), actor(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports, "count": len(reports)})
}

// CloseReport handles POST /api/moderation/reports/:id/:action
func (s *Server) CloseReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	report, err := s.reportService.CloseReport(c.UserContext(), actor(c), id, c.Params("action"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(report)
}
