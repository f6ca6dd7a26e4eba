package server

import (
	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetReviews handles GET /api/reviews
func (s *Server) GetReviews(c *fiber.Ctx) error {
	subjectID := c.QueryInt("subject_id", 0)
	if subjectID < 0 {
		subjectID = 0
	}

	p := parsePagination(c, 20)
	reviews, err := s.reviewService.ListReviews(c.UserContext(), actor(c),
		c.Query("subject_type"), uint(subjectID), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": reviews, "count": len(reviews)})
}

// CreateReview handles POST /api/reviews
func (s *Server) CreateReview(c *fiber.Ctx) error {
	var req struct {
		SubjectType string `json:"subject_type"`
		SubjectID   uint   `json:"subject_id"`
		Rating      int    `json:"rating"`
		Title       string `json:"title"`
		Comment     string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateReview(c.UserContext(), service.CreateReviewInput{
		Actor:       actor(c),
		SubjectType: req.SubjectType,
		SubjectID:   req.SubjectID,
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// MarkReviewHelpful handles POST /api/reviews/:id/helpful
func (s *Server) MarkReviewHelpful(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.MarkHelpful(c.UserContext(), actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ModerateReview handles POST /api/moderation/reviews/:id/:action
func (s *Server) ModerateReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	review, err := s.reviewService.Moderate(c.UserContext(), actor(c), id, c.Params("action"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/moderation/reviews/:id
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.DeleteReview(c.UserContext(), actor(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
