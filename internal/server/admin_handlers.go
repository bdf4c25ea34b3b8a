package server

import (
	"time"

	"parasocial/internal/cache"
	"parasocial/internal/models"
	"parasocial/internal/publisher"

	"github.com/gofiber/fiber/v2"
)

// TriggerSweep handles POST /api/admin/sweep. It runs one publication sweep
// immediately instead of waiting for the background sweeper's next tick, then
// performs the fan-out for every post the sweep released.
func (s *Server) TriggerSweep(c *fiber.Ctx) error {
	batchLimit := c.QueryInt("batch_limit", s.config.SweepBatchLimit)
	now := time.Now().UTC()

	transitions, err := s.engine.Sweep(c.Context(), now, batchLimit)

	// Fan out whatever was applied, even on a partial sweep: those writes are
	// durable and their readers should hear about them.
	s.fanOutTransitions(c, transitions)

	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":     "sweep aborted: post store unavailable",
			"published": len(transitions),
			"swept_at":  now,
		})
	}

	return c.JSON(fiber.Map{
		"published":   len(transitions),
		"transitions": transitions,
		"swept_at":    now,
	})
}

func (s *Server) fanOutTransitions(c *fiber.Ctx, transitions []publisher.Transition) {
	if len(transitions) == 0 {
		return
	}
	// Newly visible posts change the public feed's first page.
	cache.InvalidateFeed(c.Context())
	if s.notifier == nil {
		return
	}
	for _, tr := range transitions {
		s.notifier.PublishPostPublished(c.Context(), tr.PostID, tr.AuthorID, tr.PublishedAt)
	}
}

// SuspendUser handles POST /api/admin/users/:id/suspend
func (s *Server) SuspendUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.SetSuspended(c.Context(), id, true); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"suspended": true})
}

// UnsuspendUser handles POST /api/admin/users/:id/unsuspend
func (s *Server) UnsuspendUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.SetSuspended(c.Context(), id, false); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"suspended": false})
}

// PromoteToAdmin handles POST /api/admin/users/:id/promote-admin
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.SetAdmin(c.Context(), id, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DemoteFromAdmin handles POST /api/admin/users/:id/demote-admin
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// An admin cannot demote themselves; keeps at least one admin reachable.
	if id == userID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot demote yourself"))
	}

	user, err := s.userService.SetAdmin(c.Context(), id, false)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
