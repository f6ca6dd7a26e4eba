package server

import (
	"errors"

	"wayfarer/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetObjectives handles GET /api/objectives
func (s *Server) GetObjectives(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	objectives, err := s.directoryRepo.ListObjectives(c.UserContext(), c.Query("region"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"objectives": objectives, "count": len(objectives)})
}

// GetObjectiveBySlug handles GET /api/objectives/:slug
func (s *Server) GetObjectiveBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	objective, err := s.directoryRepo.GetObjectiveBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Objective", slug))
		}
		return respondServiceError(c, err)
	}
	return c.JSON(objective)
}

// GetGuides handles GET /api/guides
func (s *Server) GetGuides(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	guides, err := s.directoryRepo.ListGuides(c.UserContext(), c.Query("region"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"guides": guides, "count": len(guides)})
}

// GetGuideBySlug handles GET /api/guides/:slug
func (s *Server) GetGuideBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	guide, err := s.directoryRepo.GetGuideBySlug(c.UserContext(), slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Guide", slug))
		}
		return respondServiceError(c, err)
	}
	return c.JSON(guide)
}
