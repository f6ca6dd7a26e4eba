package server

import (
	"io"

	"wayfarer/internal/models"
	"wayfarer/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetContests handles GET /api/contests
func (s *Server) GetContests(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	contests, err := s.contestService.ListContests(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"contests": contests, "count": len(contests)})
}

// GetContest handles GET /api/contests/:id
func (s *Server) GetContest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	contest, err := s.contestService.GetContest(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(contest)
}

// GetContestEntries handles GET /api/contests/:id/entries
func (s *Server) GetContestEntries(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	entries, err := s.contestService.ListEntries(c.UserContext(), actor(c), id, c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries, "count": len(entries)})
}

// GetContestTally handles GET /api/contests/:id/tally
func (s *Server) GetContestTally(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	total, err := s.contestService.Tally(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"contest_id": id, "total_votes": total})
}

// SubmitContestEntry handles POST /api/contests/:id/entries
//
// Expects a multipart form with a "title" field and an "image" file.
func (s *Server) SubmitContestEntry(c *fiber.Ctx) error {
	contestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An image file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded image"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded image"))
	}

	entry, err := s.contestService.SubmitEntry(c.UserContext(), service.SubmitEntryInput{
		Actor:       actor(c),
		ContestID:   contestID,
		Title:       c.FormValue("title"),
		Image:       content,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// VoteContestEntry handles POST /api/contests/entries/:id/vote
func (s *Server) VoteContestEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entry, result, err := s.contestService.VoteEntry(c.UserContext(), actor(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry, "result": result})
}

// ModerateContestEntry handles POST /api/moderation/contests/entries/:id/:action
func (s *Server) ModerateContestEntry(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason         string `json:"reason"`
		FraudConfirmed bool   `json:"fraud_confirmed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.contestService.ModerateEntry(c.UserContext(), actor(c), id,
		c.Params("action"), req.Reason, req.FraudConfirmed)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entry)
}

// ServeContestImage handles GET /media/contest/:key
func (s *Server) ServeContestImage(c *fiber.Ctx) error {
	path, err := s.imageService.Resolve(c.Params("key"))
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/webp")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400, immutable")
	return c.SendFile(path)
}
