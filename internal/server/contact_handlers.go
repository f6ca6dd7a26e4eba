package server

import (
	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitContactMessage handles POST /api/contact/messages
func (s *Server) SubmitContactMessage(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.contactService.SubmitMessage(c.UserContext(), service.SubmitMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// SubmitInquiry handles POST /api/contact/inquiries
func (s *Server) SubmitInquiry(c *fiber.Ctx) error {
	var req struct {
		ObjectiveID uint   `json:"objective_id"`
		Name        string `json:"name"`
		Email       string `json:"email"`
		Message     string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	inquiry, err := s.contactService.SubmitInquiry(c.UserContext(), service.SubmitInquiryInput{
		ObjectiveID: req.ObjectiveID,
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inquiry)
}

// SubmitBooking handles POST /api/contact/bookings
func (s *Server) SubmitBooking(c *fiber.Ctx) error {
	var req struct {
		GuideID uint   `json:"guide_id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	booking, err := s.contactService.SubmitBooking(c.UserContext(), service.SubmitBookingInput{
		GuideID: req.GuideID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// GetContactMessages handles GET /api/admin/inbox/messages
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	messages, err := s.contactService.ListMessages(c.UserContext(), actor(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages, "count": len(messages)})
}

// GetInquiries handles GET /api/admin/inbox/inquiries
func (s *Server) GetInquiries(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	inquiries, err := s.contactService.ListInquiries(c.UserContext(), actor(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"inquiries": inquiries, "count": len(inquiries)})
}

// GetBookings handles GET /api/admin/inbox/bookings
func (s *Server) GetBookings(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	bookings, err := s.contactService.ListBookings(c.UserContext(), actor(c), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings, "count": len(bookings)})
}

// transitionNotes parses the optional admin notes body sent with inbox
// transition requests. An empty body is fine.
func transitionNotes(c *fiber.Ctx) *string {
	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil
	}
	return req.Notes
}

// TransitionContactMessage handles POST /api/admin/inbox/messages/:id/:action
func (s *Server) TransitionContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	msg, err := s.contactService.TransitionMessage(c.UserContext(), actor(c), id, c.Params("action"), transitionNotes(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(msg)
}

// TransitionInquiry handles POST /api/admin/inbox/inquiries/:id/:action
func (s *Server) TransitionInquiry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	inquiry, err := s.contactService.TransitionInquiry(c.UserContext(), actor(c), id, c.Params("action"), transitionNotes(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(inquiry)
}

// TransitionBooking handles POST /api/admin/inbox/bookings/:id/:action
func (s *Server) TransitionBooking(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	booking, err := s.contactService.TransitionBooking(c.UserContext(), actor(c), id, c.Params("action"), transitionNotes(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(booking)
}
