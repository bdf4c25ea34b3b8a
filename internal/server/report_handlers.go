package server

import (
	"parasocial/internal/models"
	"parasocial/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		ReportedUserID uint   `json:"reported_user_id"`
		PostID         *uint  `json:"post_id"`
		Reason         string `json:"reason"`
		Description    string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.reportService.CreateReport(c.Context(), service.CreateReportInput{
		ReporterID:     userID,
		ReportedUserID: req.ReportedUserID,
		PostID:         req.PostID,
		Reason:         req.Reason,
		Description:    req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetMyReports handles GET /api/reports/me
func (s *Server) GetMyReports(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	reports, err := s.reportService.ListMyReports(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return c.JSON(reports)
}

// GetOpenReports handles GET /api/admin/reports
func (s *Server) GetOpenReports(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	reports, err := s.reportService.ListOpenReports(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return c.JSON(reports)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status        string `json:"status"`
		ModeratorNote string `json:"moderator_note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.reportService.ResolveReport(c.Context(), service.ResolveReportInput{
		ModeratorID:   userID,
		ReportID:      id,
		Status:        models.ReportStatus(req.Status),
		ModeratorNote: req.ModeratorNote,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(report)
}
